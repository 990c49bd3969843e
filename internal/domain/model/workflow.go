package model

// WorkflowRef is a workflow definition listed by the Actions API.
type WorkflowRef struct {
	Path string
	Name string
}

// WorkflowFile is the content of a workflow definition at a given ref.
type WorkflowFile struct {
	Path    string
	Ref     string // Empty means the default branch.
	Content string
}
