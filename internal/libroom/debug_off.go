//go:build !debug
// +build !debug

package libroom

const debugEnabled = false

func DebugLog(format string, args ...interface{})     {}
func DebugLogOnce(format string, args ...interface{}) {}
