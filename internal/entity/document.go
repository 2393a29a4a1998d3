package entity

type DocumentUploadResult struct {
	Success       bool   `json:"success"`
	Filename      string `json:"filename"`
	ContentLength int    `json:"content_length"`
}

type DocumentDeleteResult struct {
	Success bool   `json:"success"`
	Deleted string `json:"deleted"`
	Message string `json:"message"`
}

type RestartResult struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	ResearchDocName string `json:"research_doc_name"`
}
