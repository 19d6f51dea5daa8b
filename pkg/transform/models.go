package transform

// Task types produced per issue.
const (
	TaskSummarization          = "summarization"
	TaskClassificationStatus   = "classification_status"
	TaskClassificationPriority = "classification_priority"
	TaskQA                     = "qa"
)

// Example is one flat training example in instruction/input/output form.
type Example struct {
	Instruction string   `json:"instruction"`
	Input       string   `json:"input"`
	Output      string   `json:"output"`
	TaskType    string   `json:"task_type"`
	Metadata    Metadata `json:"metadata"`
}

// Metadata ties an example back to its source issue.
type Metadata struct {
	IssueKey string `json:"issue_key"`
	Project  string `json:"project"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}
