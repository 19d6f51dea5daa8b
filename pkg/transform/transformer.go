package transform

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"jiraminer/pkg/config"
	"jiraminer/pkg/jira"
	"jiraminer/pkg/logger"
	"jiraminer/pkg/storage"
)

const unknownValue = "Unknown"

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Transformer converts raw batch files into flat training examples. It is a
// pure consumer of the scraper's output directory: no network, no
// checkpoints, no feedback into the fetch stage.
type Transformer struct {
	store  *storage.Manager
	logger logger.Logger
}

// New creates a Transformer over the configured storage layout.
func New(cfg *config.Config, log logger.Logger) (*Transformer, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	store, err := storage.NewManager(cfg.Storage.RawDir, cfg.Storage.ProcessedDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return &Transformer{store: store, logger: log}, nil
}

// TransformProject processes every batch file of a project into training
// examples and writes them as JSONL. It returns the number of examples
// produced; zero with no error when there is nothing to transform.
func (t *Transformer) TransformProject(projectKey string) (int, error) {
	log := t.logger.WithField("project", projectKey)
	log.Info("starting transformation")

	paths, err := t.store.ListBatches(projectKey)
	if err != nil {
		return 0, fmt.Errorf("failed to list batches: %w", err)
	}
	if len(paths) == 0 {
		log.Warn("no batch files found")
		return 0, nil
	}

	var examples []Example
	for _, path := range paths {
		batchExamples, err := t.processBatchFile(projectKey, path)
		if err != nil {
			return 0, err
		}
		examples = append(examples, batchExamples...)
	}

	out := make([]interface{}, len(examples))
	for i, example := range examples {
		out[i] = example
	}
	if err := t.store.SaveTrainingData(projectKey, out); err != nil {
		return 0, err
	}

	log.WithField("examples", len(examples)).Info("transformation complete")
	return len(examples), nil
}

// processBatchFile loads one batch and transforms each record. A record that
// cannot be parsed is skipped with a warning rather than failing the batch.
func (t *Transformer) processBatchFile(projectKey, path string) ([]Example, error) {
	records, err := t.store.LoadBatch(path)
	if err != nil {
		return nil, err
	}

	var examples []Example
	for _, raw := range records {
		var issue jira.Issue
		if err := json.Unmarshal(raw, &issue); err != nil {
			t.logger.WarnWithFields("skipping unparseable issue", map[string]interface{}{
				"batch": path,
				"error": err.Error(),
			})
			continue
		}
		examples = append(examples, t.TransformIssue(projectKey, &issue)...)
	}

	t.logger.DebugWithFields("batch transformed", map[string]interface{}{
		"batch":    path,
		"issues":   len(records),
		"examples": len(examples),
	})

	return examples, nil
}

// TransformIssue produces up to four task examples from one issue. Issues
// with neither a summary nor a description carry no signal and are skipped.
func (t *Transformer) TransformIssue(projectKey string, issue *jira.Issue) []Example {
	if issue.Fields.Summary == "" && issue.Fields.Description == "" {
		return nil
	}

	return []Example{
		t.summarizationTask(projectKey, issue),
		t.classificationTask(projectKey, issue, "status"),
		t.classificationTask(projectKey, issue, "priority"),
		t.qaTask(projectKey, issue),
	}
}

func (t *Transformer) summarizationTask(projectKey string, issue *jira.Issue) Example {
	description := CleanText(issue.Fields.Description)
	summary := CleanText(issue.Fields.Summary)

	input := description
	if comments := ExtractComments(issue); comments != "" {
		input += "\n\nComments:\n" + comments
	}

	return Example{
		Instruction: "Summarize the following Jira issue",
		Input:       input,
		Output:      summary,
		TaskType:    TaskSummarization,
		Metadata:    t.metadata(projectKey, issue),
	}
}

func (t *Transformer) classificationTask(projectKey string, issue *jira.Issue, classifyBy string) Example {
	input := fmt.Sprintf("Title: %s\n\nDescription: %s",
		CleanText(issue.Fields.Summary), CleanText(issue.Fields.Description))

	var label, instruction, taskType string
	switch classifyBy {
	case "status":
		label = namedFieldValue(issue.Fields.Status)
		instruction = "Classify the status of this Jira issue (e.g., Open, In Progress, Resolved, Closed)"
		taskType = TaskClassificationStatus
	case "priority":
		label = namedFieldValue(issue.Fields.Priority)
		instruction = "Classify the priority of this Jira issue (e.g., Critical, Major, Minor, Trivial)"
		taskType = TaskClassificationPriority
	default:
		label = unknownValue
		instruction = fmt.Sprintf("Classify the %s of this Jira issue", classifyBy)
		taskType = "classification_" + classifyBy
	}

	return Example{
		Instruction: instruction,
		Input:       input,
		Output:      label,
		TaskType:    taskType,
		Metadata:    t.metadata(projectKey, issue),
	}
}

func (t *Transformer) qaTask(projectKey string, issue *jira.Issue) Example {
	summary := CleanText(issue.Fields.Summary)
	description := CleanText(issue.Fields.Description)

	answer := description
	if answer == "" {
		answer = summary
	}

	input := fmt.Sprintf(
		"Title: %s\n\nDescription: %s\n\nQuestion: What is this issue about and what problem does it address?",
		summary, description)

	return Example{
		Instruction: "Answer the following question about this Jira issue",
		Input:       input,
		Output:      answer,
		TaskType:    TaskQA,
		Metadata:    t.metadata(projectKey, issue),
	}
}

func (t *Transformer) metadata(projectKey string, issue *jira.Issue) Metadata {
	key := issue.Key
	if key == "" {
		key = unknownValue
	}

	return Metadata{
		IssueKey: key,
		Project:  projectKey,
		Status:   namedFieldValue(issue.Fields.Status),
		Priority: namedFieldValue(issue.Fields.Priority),
	}
}

// CleanText strips HTML tags and collapses whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractComments renders an issue's comments as "author: body" lines.
func ExtractComments(issue *jira.Issue) string {
	if issue.Fields.Comment == nil {
		return ""
	}

	var lines []string
	for _, comment := range issue.Fields.Comment.Comments {
		if comment.Body == "" {
			continue
		}
		author := comment.Author.DisplayName
		if author == "" {
			author = unknownValue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", author, CleanText(comment.Body)))
	}

	return strings.Join(lines, "\n")
}

func namedFieldValue(field *jira.NamedField) string {
	if field == nil || field.Name == "" {
		return unknownValue
	}
	return field.Name
}
