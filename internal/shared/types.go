package shared

// Asynq task type identifiers, namespaced by domain.
const (
	TypeSyncRun        = "sync:run"
	TypeNotifyShortage = "notify:out_of_stock"
)

// QueueDefault is the fallback queue for tasks with no explicit priority.
const QueueDefault = "default"

// NotifyShortagePayload carries nothing beyond a trigger signal: the task
// handler re-reads the current unresolved list and NotifierConfig at run
// time, so the payload only needs to exist for asynq's task identity.
type NotifyShortagePayload struct {
	TriggeredBy string `json:"triggered_by,omitempty"`
}
