package core

// Logger is any service that can log (and report) application events.
// expected args: error, map[string]interface{}, or a learner id tagged with LearnerTag.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// LearnerTag marks a learner id passed to a Logger so it can be attached to the report.
type LearnerTag string
