package queue

const (
	TypeRunRecord = "runlog:record"
)
