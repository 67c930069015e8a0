package models

// ImportDocument is the bulk-import payload:
// {courses: [{title, description?, modules?: [{title, description?, content?: [{title, url, type}]}]}]}
type ImportDocument struct {
	Courses []ImportCourse `json:"courses"`
}

type ImportCourse struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Modules     []ImportModule `json:"modules,omitempty"`
}

type ImportModule struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Content     []ImportContentItem `json:"content,omitempty"`
}

type ImportContentItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// ImportStats counts what an import run created before finishing or failing.
type ImportStats struct {
	Courses int `json:"courses"`
	Modules int `json:"modules"`
	Items   int `json:"items"`
}
