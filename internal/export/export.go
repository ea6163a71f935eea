// Package export renders the task collection to interchange formats and
// parses those formats back for import.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "yaml", "csv", "markdown", "pdf"}

// Exporter renders the stored collection.
type Exporter struct {
	repo *tasks.Repository
}

// NewExporter creates an Exporter over repo.
func NewExporter(repo *tasks.Repository) *Exporter {
	return &Exporter{repo: repo}
}

// Export loads the collection and renders it in the given format.
func (e *Exporter) Export(ctx context.Context, format string) ([]byte, error) {
	list, err := e.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return Render(list, format)
}

// Render serializes list in the given format.
func Render(list []tasks.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(list, "", "  ")
	case "yaml", "yml":
		return renderYAML(list)
	case "csv":
		return renderCSV(list)
	case "markdown", "md":
		return renderMarkdown(list), nil
	case "pdf":
		return renderPDF(list)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// yamlTask mirrors the persisted task shape with yaml tags so the YAML
// export uses the same field names as the JSON one.
type yamlTask struct {
	ID               string     `yaml:"id"`
	Title            string     `yaml:"title"`
	Description      string     `yaml:"description,omitempty"`
	Status           string     `yaml:"status"`
	Priority         string     `yaml:"priority"`
	DueDate          *time.Time `yaml:"dueDate,omitempty"`
	CreatedAt        time.Time  `yaml:"createdAt"`
	UpdatedAt        time.Time  `yaml:"updatedAt"`
	EstimatedMinutes *int       `yaml:"estimatedMinutes,omitempty"`
	ActualMinutes    *int       `yaml:"actualMinutes,omitempty"`
	Tags             []string   `yaml:"tags,omitempty"`
}

func toYAMLTask(t tasks.Task) yamlTask {
	return yamlTask{
		ID:               t.ID,
		Title:            t.Title,
		Description:      t.Description,
		Status:           string(t.Status),
		Priority:         string(t.Priority),
		DueDate:          t.DueDate,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		EstimatedMinutes: t.EstimatedMinutes,
		ActualMinutes:    t.ActualMinutes,
		Tags:             t.Tags,
	}
}

func fromYAMLTask(y yamlTask) tasks.Task {
	return tasks.Task{
		ID:               y.ID,
		Title:            y.Title,
		Description:      y.Description,
		Status:           tasks.Status(y.Status),
		Priority:         tasks.Priority(y.Priority),
		DueDate:          y.DueDate,
		CreatedAt:        y.CreatedAt,
		UpdatedAt:        y.UpdatedAt,
		EstimatedMinutes: y.EstimatedMinutes,
		ActualMinutes:    y.ActualMinutes,
		Tags:             y.Tags,
	}
}

func renderYAML(list []tasks.Task) ([]byte, error) {
	docs := make([]yamlTask, 0, len(list))
	for _, t := range list {
		docs = append(docs, toYAMLTask(t))
	}
	return yaml.Marshal(docs)
}

func renderCSV(list []tasks.Task) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"id", "title", "description", "status", "priority",
		"dueDate", "createdAt", "updatedAt", "estimatedMinutes", "actualMinutes", "tags"})
	for _, t := range list {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format(time.RFC3339)
		}
		est, act := "", ""
		if t.EstimatedMinutes != nil {
			est = strconv.Itoa(*t.EstimatedMinutes)
		}
		if t.ActualMinutes != nil {
			act = strconv.Itoa(*t.ActualMinutes)
		}
		_ = w.Write([]string{
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority),
			due, t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339),
			est, act, strings.Join(t.Tags, "|"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return []byte(b.String()), nil
}

// statusOrder fixes the section order of grouped renderings.
var statusOrder = []tasks.Status{tasks.StatusTodo, tasks.StatusInProgress, tasks.StatusCompleted}

func renderMarkdown(list []tasks.Task) []byte {
	var b strings.Builder
	b.WriteString("# Tasks\n")

	for _, status := range statusOrder {
		var group []tasks.Task
		for _, t := range list {
			if t.Status == status {
				group = append(group, t)
			}
		}
		if len(group) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n## %s\n\n", status)
		for _, t := range group {
			box := " "
			if t.Status == tasks.StatusCompleted {
				box = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s (%s", box, t.Title, t.Priority)
			if t.DueDate != nil {
				fmt.Fprintf(&b, ", due %s", t.DueDate.Format("2006-01-02"))
			}
			b.WriteString(")\n")
		}
	}
	return []byte(b.String())
}

func renderPDF(list []tasks.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Report")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, fmt.Sprintf("%d tasks", len(list)))
	pdf.Ln(10)

	for _, t := range list {
		line := fmt.Sprintf("[%s] %s (%s)", t.Status, t.Title, t.Priority)
		if t.DueDate != nil {
			line += " due " + t.DueDate.Format("2006-01-02")
		}
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
