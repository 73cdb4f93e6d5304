package model

import (
	"time"

	"github.com/google/uuid"
)

// TaskTokenKeyPrefix là namespace của token trong Redis
const TaskTokenKeyPrefix = "tasktoken:"

// TaskToken là proof-of-completion do SERVER mint khi phát link nhiệm vụ.
// Token sống trong Redis với TTL; consumption là GETDEL nên exactly-once
// bất kể client gửi lại bao nhiêu lần. Bản copy phía client không bao giờ
// là nguồn sự thật cho trạng thái "đã dùng".
type TaskToken struct {
	Token     string    `json:"token"`
	AccountID uuid.UUID `json:"account_id"`
	Gate      string    `json:"gate"`
	Points    int64     `json:"points"`
	GateQuota int       `json:"gate_quota"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Key trả về Redis key đầy đủ
func (t TaskToken) Key() string {
	return TaskTokenKeyPrefix + t.Token
}
