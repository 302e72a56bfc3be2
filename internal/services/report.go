package services

import (
	"fmt"
	"strings"

	"github.com/ortelius/media-provisioner/model"
)

// NoChangesMessage is sent when no backend reported a success
const NoChangesMessage = "No changes were made."

// ReportOptions controls optional report sections
type ReportOptions struct {
	// IncludeFailures appends the failed operations and why they failed
	IncludeFailures bool
}

// FormatReport renders a batch result as one section per backend with at
// least one success, in the fixed backend order. Backends without successes
// get no section.
func FormatReport(result *model.BatchResult, opts ReportOptions) string {
	var sections []string

	for _, backend := range model.Backends {
		names := result.SucceededOn(backend)
		if len(names) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("%s:\n%s", sectionTitle(result.Action, backend), bulletList(names)))
	}

	if opts.IncludeFailures {
		if failed := result.Failures(); len(failed) > 0 {
			lines := make([]string, 0, len(failed))
			for _, o := range failed {
				lines = append(lines, fmt.Sprintf("%s: %s (%s)", o.Backend.DisplayName(), o.Username, o.Kind))
			}
			sections = append(sections, "Failures:\n"+bulletList(lines))
		}
	}

	if len(sections) == 0 {
		return NoChangesMessage
	}
	return strings.Join(sections, "\n\n")
}

func sectionTitle(action model.Action, backend model.Backend) string {
	if action == model.ActionDelete {
		return "Deleted from " + backend.DisplayName()
	}
	if backend == model.BackendJellyseerr {
		return "Imported into " + backend.DisplayName()
	}
	return "Created in " + backend.DisplayName()
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return strings.Join(lines, "\n")
}
