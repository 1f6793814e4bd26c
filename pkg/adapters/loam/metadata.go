package loam

// TemplateMetadata is the front matter of a template document.
type TemplateMetadata struct {
	ID          string   `json:"id" mapstructure:"id"`
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description" mapstructure:"description"`
	Tags        []string `json:"tags" mapstructure:"tags"`
}
