package project

import "fmt"

// Edit carries the editable fields of a project. Nil fields are left unchanged.
type Edit struct {
	Name                 *string
	MeetingURL           *string
	Prompt               *string
	WikiURL              *string
	WikiTableTitle       *string
	SlackChannel         *string
	SlackMessageTemplate *string
}

func (e Edit) apply(p Project) Project {
	if e.Name != nil {
		p.Name = *e.Name
	}
	if e.MeetingURL != nil {
		p.MeetingURL = *e.MeetingURL
	}
	if e.Prompt != nil {
		p.Prompt = *e.Prompt
	}
	if e.WikiURL != nil {
		p.WikiURL = *e.WikiURL
	}
	if e.WikiTableTitle != nil {
		p.WikiTableTitle = *e.WikiTableTitle
	}
	if e.SlackChannel != nil {
		p.SlackChannel = *e.SlackChannel
	}
	if e.SlackMessageTemplate != nil {
		p.SlackMessageTemplate = *e.SlackMessageTemplate
	}
	return p
}

// Find returns the project with the given id.
func Find(projects []Project, id string) (Project, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

func indexOf(projects []Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(projects []Project) []Project {
	out := make([]Project, len(projects))
	copy(out, projects)
	return out
}

// Append returns a new collection with p added at the end.
func Append(projects []Project, p Project) ([]Project, error) {
	if err := Validate(p); err != nil {
		return nil, err
	}
	if indexOf(projects, p.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, p.ID)
	}
	out := make([]Project, 0, len(projects)+1)
	out = append(out, projects...)
	return append(out, p), nil
}

// ApplyEdit returns a new collection with the edit applied to project id.
// The id, creation time and runs are preserved.
func ApplyEdit(projects []Project, id string, edit Edit) ([]Project, error) {
	i := indexOf(projects, id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	updated := edit.apply(projects[i])
	if err := Validate(updated); err != nil {
		return nil, err
	}
	out := clone(projects)
	out[i] = updated
	return out, nil
}

// Remove returns a new collection without project id.
func Remove(projects []Project, id string) ([]Project, error) {
	i := indexOf(projects, id)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	out := make([]Project, 0, len(projects)-1)
	out = append(out, projects[:i]...)
	return append(out, projects[i+1:]...), nil
}

// InsertRun returns a new collection with run prepended to project id.
func InsertRun(projects []Project, projectID string, run Run) ([]Project, error) {
	i := indexOf(projects, projectID)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	out := clone(projects)
	runs := make([]Run, 0, len(out[i].Runs)+1)
	runs = append(runs, run)
	out[i].Runs = append(runs, out[i].Runs...)
	return out, nil
}

// CompleteRun returns a new collection with the run moved to its terminal state.
// A run that already finished is never modified.
func CompleteRun(projects []Project, projectID, runID string, outcome Outcome) ([]Project, error) {
	if !outcome.Status.Terminal() {
		return nil, fmt.Errorf("%w: %q is not a terminal status", ErrInvalidInput, outcome.Status)
	}
	i := indexOf(projects, projectID)
	if i < 0 {
		return nil, ErrProjectNotFound
	}
	j := -1
	for k, r := range projects[i].Runs {
		if r.ID == runID {
			j = k
			break
		}
	}
	if j < 0 {
		return nil, ErrRunNotFound
	}
	if projects[i].Runs[j].Status.Terminal() {
		return nil, ErrRunTerminal
	}

	run := projects[i].Runs[j]
	run.Status = outcome.Status
	finished := outcome.FinishedAt
	run.FinishedAt = &finished
	switch outcome.Status {
	case StatusCompleted:
		run.Summary = outcome.Summary
		run.ActionItems = append([]ActionItem(nil), outcome.ActionItems...)
		run.Error = ""
	case StatusFailed:
		run.Summary = ""
		run.ActionItems = nil
		run.Error = outcome.Error
	}

	out := clone(projects)
	runs := make([]Run, len(out[i].Runs))
	copy(runs, out[i].Runs)
	runs[j] = run
	out[i].Runs = runs
	return out, nil
}
