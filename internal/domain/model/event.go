package model

// Event is a verified webhook delivery classified by event type. The set of
// implementations is closed: InstallationEvent, InstallationRepositoriesEvent,
// WorkflowRunEvent, PullRequestEvent and UnknownEvent.
type Event interface {
	EventType() string
	isEvent()
}

// InstallationEvent reports an app installation being created, deleted or changed.
type InstallationEvent struct {
	Action         string
	InstallationID int64 `validate:"required,gt=0"`
	AccountLogin   string
}

// InstallationRepositoriesEvent reports repositories added to or removed from an installation.
type InstallationRepositoriesEvent struct {
	Action         string
	InstallationID int64 `validate:"required,gt=0"`
	Added          int
	Removed        int
}

// WorkflowRunEvent reports a workflow run changing state.
type WorkflowRunEvent struct {
	Action         string
	InstallationID int64  `validate:"required,gt=0"`
	RepoFullName   string `validate:"required,contains=/"`
	WorkflowPath   string `validate:"required"`
	HeadSHA        string
}

// PullRequestEvent reports activity on a pull request.
type PullRequestEvent struct {
	Action         string
	InstallationID int64  `validate:"required,gt=0"`
	RepoFullName   string `validate:"required,contains=/"`
	Number         int    `validate:"required,gt=0"`
	HeadSHA        string
}

// UnknownEvent is any event type the router does not handle.
type UnknownEvent struct {
	Type string
}

func (InstallationEvent) EventType() string             { return "installation" }
func (InstallationRepositoriesEvent) EventType() string { return "installation_repositories" }
func (WorkflowRunEvent) EventType() string              { return "workflow_run" }
func (PullRequestEvent) EventType() string              { return "pull_request" }
func (e UnknownEvent) EventType() string                { return e.Type }

func (InstallationEvent) isEvent()             {}
func (InstallationRepositoriesEvent) isEvent() {}
func (WorkflowRunEvent) isEvent()              {}
func (PullRequestEvent) isEvent()              {}
func (UnknownEvent) isEvent()                  {}
