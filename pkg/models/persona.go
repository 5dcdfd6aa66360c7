package models

// Persona is a named executor behavioral brief. The engine embeds the brief
// into generated instructions; it never interprets the text itself.
type Persona struct {
	Name         string   `json:"name"         yaml:"name"        validate:"required"`
	DisplayName  string   `json:"display_name" yaml:"displayName" validate:"required"`
	Description  string   `json:"description"  yaml:"description"`
	Brief        string   `json:"brief"        yaml:"brief"       validate:"required"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
}
