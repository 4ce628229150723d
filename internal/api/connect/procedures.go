// Package connect provides Connect RPC service implementations.
package connect

// SlideshowServiceName is the fully-qualified name of the slideshow service.
const SlideshowServiceName = "slidebox.v1.SlideshowService"

// Procedure paths of SlideshowService.
const (
	GetStatusProcedure       = "/" + SlideshowServiceName + "/GetStatus"
	ListPresetsProcedure     = "/" + SlideshowServiceName + "/ListPresets"
	WatchStatusProcedure     = "/" + SlideshowServiceName + "/WatchStatus"
	StartProcedure           = "/" + SlideshowServiceName + "/Start"
	StopProcedure            = "/" + SlideshowServiceName + "/Stop"
	PauseProcedure           = "/" + SlideshowServiceName + "/Pause"
	ResumeProcedure          = "/" + SlideshowServiceName + "/Resume"
	NextProcedure            = "/" + SlideshowServiceName + "/Next"
	PreviousProcedure        = "/" + SlideshowServiceName + "/Previous"
	SetIntervalProcedure     = "/" + SlideshowServiceName + "/SetInterval"
	LoadProcedure            = "/" + SlideshowServiceName + "/Load"
	EnterFullscreenProcedure = "/" + SlideshowServiceName + "/EnterFullscreen"
	ExitFullscreenProcedure  = "/" + SlideshowServiceName + "/ExitFullscreen"
)

// controlProcedures require the admin token.
var controlProcedures = map[string]bool{
	StartProcedure:           true,
	StopProcedure:            true,
	PauseProcedure:           true,
	ResumeProcedure:          true,
	NextProcedure:            true,
	PreviousProcedure:        true,
	SetIntervalProcedure:     true,
	LoadProcedure:            true,
	EnterFullscreenProcedure: true,
	ExitFullscreenProcedure:  true,
}

// IsControlProcedure reports whether procedure changes playback.
func IsControlProcedure(procedure string) bool {
	return controlProcedures[procedure]
}
