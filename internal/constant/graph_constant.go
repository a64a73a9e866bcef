package constant

// Node-type labels carried by the knowledge graph. Each label has its own
// vector search scope so retrieval can report where evidence came from.
const (
	GraphLabelConcept      = "Concept"
	GraphLabelPerson       = "Person"
	GraphLabelOrganization = "Organization"
	GraphLabelEvent        = "Event"
	GraphLabelSource       = "Source"
)

// DefaultGraphLabels is the label set the research retriever queries when
// the caller does not restrict it.
var DefaultGraphLabels = []string{
	GraphLabelConcept,
	GraphLabelPerson,
	GraphLabelOrganization,
	GraphLabelEvent,
	GraphLabelSource,
}
