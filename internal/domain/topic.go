package domain

// Topic is one advice category of the catalog.
type Topic struct {
	ID          TopicID
	Label       string
	Description string
	Icon        string

	// Instruction is appended to the base framing when the topic is selected.
	Instruction string

	SamplePrompts []string
}

// TopicLookup resolves topic identifiers. Unknown ids report false, never an error.
type TopicLookup interface {
	Lookup(id TopicID) (Topic, bool)
}
