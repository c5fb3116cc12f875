//go:build !windows

package logging

import "log/syslog"

func openSystemLog() (systemLogger, error) {
	return syslog.New(syslog.LOG_ERR|syslog.LOG_USER, "keyrotate")
}
