package view

// HiddenField is a name/value pair rendered as <input type="hidden">.
type HiddenField struct {
	Name  string
	Value string
}

// Form describes an outgoing HTML form. Hidden fields are emitted in the
// order they were added.
type Form struct {
	Action string
	Method string
	hidden []HiddenField
}

// NewForm returns a POST form targeting action.
func NewForm(action string) *Form {
	return &Form{Action: action, Method: "post"}
}

// AddHiddenField appends a hidden value. Adding a name twice keeps both.
func (f *Form) AddHiddenField(name, value string) {
	f.hidden = append(f.hidden, HiddenField{Name: name, Value: value})
}

// HiddenFields returns a copy of the hidden fields.
func (f *Form) HiddenFields() []HiddenField {
	if f == nil {
		return nil
	}
	out := make([]HiddenField, len(f.hidden))
	copy(out, f.hidden)
	return out
}

// Hidden returns the value of the first hidden field called name.
func (f *Form) Hidden(name string) string {
	if f == nil {
		return ""
	}
	for _, h := range f.hidden {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}
