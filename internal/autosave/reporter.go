package autosave

import "go.uber.org/zap"

const EventSaveFailed = "config_save_failed"

// Reporter is the observability sink for save failures.
type Reporter interface {
	Report(event string, err error)
}

type ReporterFunc func(event string, err error)

func (f ReporterFunc) Report(event string, err error) { f(event, err) }

type LogReporter struct {
	logger *zap.SugaredLogger
}

func NewLogReporter(logger *zap.SugaredLogger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(event string, err error) {
	r.logger.Errorw("reported failure", "event", event, "error", err)
}
