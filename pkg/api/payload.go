package api

// TaskPayload is the narrow view of an external task object attached to an
// activity event. Hosts adapt their own task types to it. Each accessor
// reports false when the underlying object has no such value.
type TaskPayload interface {
	UserID() (string, bool)
	TaskStatus() (string, bool)
	ErrorCode() (string, bool)
	ErrorMessage() (string, bool)
	DisplayName() (string, bool)
}

// TaskInfo is a TaskPayload backed by optional fields.
type TaskInfo struct {
	User    *string
	Status  *string
	Code    *string
	Message *string
	Display *string
}

var _ TaskPayload = TaskInfo{}

func (t TaskInfo) UserID() (string, bool)       { return deref(t.User) }
func (t TaskInfo) TaskStatus() (string, bool)   { return deref(t.Status) }
func (t TaskInfo) ErrorCode() (string, bool)    { return deref(t.Code) }
func (t TaskInfo) ErrorMessage() (string, bool) { return deref(t.Message) }
func (t TaskInfo) DisplayName() (string, bool)  { return deref(t.Display) }

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}

// Ptr returns a pointer to s. It is a convenience for filling TaskInfo.
func Ptr(s string) *string { return &s }
