//go:build windows

package logging

import "errors"

func openSystemLog() (systemLogger, error) {
	return nil, errors.New("system log not supported on windows")
}
