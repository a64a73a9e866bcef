package research

// Prompt templates for the research pipeline. All structured outputs are
// requested as JSON objects; every parse has a degraded fallback so a
// malformed response never fails a run.

const plannerPromptTemplate = `You are a research planner. Break the following research question into at most %d focused sub-questions that together cover the topic.

Research question: %s

Respond with a JSON object of this exact shape:
{"sub_queries": ["first sub-question", "second sub-question"]}

Rules:
- Each sub-question must be self-contained and answerable on its own.
- Do not exceed %d sub-questions.
- Respond with the JSON object only, no prose around it.`

const reasonPromptTemplate = `You are answering step %d of %d of a research task.

Overall research question: %s

Current sub-question: %s

Evidence from the knowledge graph:
%s

Evidence from web search:
%s

Reason over the evidence and answer the sub-question. Respond with a JSON object of this exact shape:
{"reasoning": "your step-by-step reasoning", "answer": "your final answer to the sub-question"}

Respond with the JSON object only, no prose around it.`

const synthesisPromptTemplate = `You are writing the final report for a research task.

Original research question: %s

Partial answers from each research step:
%s

Reasoning notes:
%s

Supporting evidence:
%s
%s
Write one coherent, well-structured report in markdown that integrates all of the material above and directly addresses the original question. Do not mention the research process itself.`

const synthesisCitationsInstruction = `Available web citations:
%s

End the report with a "## References" section listing only the web citations above that you actually drew on.
`

const summarizePromptTemplate = `Condense the following research notes, keeping every distinct fact, figure and claim. Write plain prose, no preamble.

%s`
