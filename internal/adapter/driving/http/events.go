package httphandler

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	gh "github.com/google/go-github/v82/github"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeEvent maps a webhook payload onto the domain event for eventType.
// Event types the router does not handle are returned as UnknownEvent without
// parsing the body. A handled event whose payload is malformed or lacks a
// required field is an error.
func decodeEvent(eventType string, payload []byte) (model.Event, error) {
	switch eventType {
	case "installation", "installation_repositories", "workflow_run", "pull_request":
	default:
		return model.UnknownEvent{Type: eventType}, nil
	}

	raw, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", eventType, err)
	}

	var event model.Event
	switch e := raw.(type) {
	case *gh.InstallationEvent:
		event = model.InstallationEvent{
			Action:         e.GetAction(),
			InstallationID: e.GetInstallation().GetID(),
			AccountLogin:   e.GetInstallation().GetAccount().GetLogin(),
		}
	case *gh.InstallationRepositoriesEvent:
		event = model.InstallationRepositoriesEvent{
			Action:         e.GetAction(),
			InstallationID: e.GetInstallation().GetID(),
			Added:          len(e.RepositoriesAdded),
			Removed:        len(e.RepositoriesRemoved),
		}
	case *gh.WorkflowRunEvent:
		event = model.WorkflowRunEvent{
			Action:         e.GetAction(),
			InstallationID: e.GetInstallation().GetID(),
			RepoFullName:   e.GetRepo().GetFullName(),
			WorkflowPath:   e.GetWorkflowRun().GetPath(),
			HeadSHA:        e.GetWorkflowRun().GetHeadSHA(),
		}
	case *gh.PullRequestEvent:
		event = model.PullRequestEvent{
			Action:         e.GetAction(),
			InstallationID: e.GetInstallation().GetID(),
			RepoFullName:   e.GetRepo().GetFullName(),
			Number:         e.GetNumber(),
			HeadSHA:        e.GetPullRequest().GetHead().GetSHA(),
		}
	default:
		return model.UnknownEvent{Type: eventType}, nil
	}

	if err := validate.Struct(event); err != nil {
		return nil, fmt.Errorf("validate %s payload: %w", eventType, err)
	}
	return event, nil
}
