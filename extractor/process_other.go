//go:build !windows

package extractor

func foregroundProcessName() string {
	return "unknown"
}
