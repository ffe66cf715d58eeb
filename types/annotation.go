package types

// Annotation is a labeled token range [TokenStart, TokenEnd) that can carry
// boolean flags such as the negation attribute.
type Annotation struct {
	Span
	TokenStart int
	TokenEnd   int
	Label      string
	Key        string
	Attributes map[string]interface{}
}

func (ann *Annotation) SetFlag(name string, value bool) {
	if ann.Attributes == nil {
		ann.Attributes = make(map[string]interface{})
	}
	ann.Attributes[name] = value
}

// Flag reports the flag value and whether it was set at all.
func (ann *Annotation) Flag(name string) (bool, bool) {
	value, ok := ann.Attributes[name]
	if !ok {
		return false, false
	}
	flag, ok := value.(bool)
	return flag, ok
}

func (ann *Annotation) Clone() *Annotation {
	clone := *ann
	clone.Attributes = make(map[string]interface{}, len(ann.Attributes))
	for key, value := range ann.Attributes {
		clone.Attributes[key] = value
	}
	return &clone
}
