package connect

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/slidebox/internal/api/message"
	"github.com/osa030/slidebox/internal/app/interval"
	"github.com/osa030/slidebox/internal/app/notification"
	"github.com/osa030/slidebox/internal/app/playback"
	"github.com/osa030/slidebox/internal/app/session"
	"github.com/osa030/slidebox/internal/infra/imagedir"
)

// Session is the part of the session manager the service drives.
type Session interface {
	Controller() *playback.Controller
	Notifications() *notification.Manager
	LoadDir(dir string) (int, error)
	Done() <-chan struct{}
}

// SlideshowService implements the SlideshowService RPC.
type SlideshowService struct {
	session Session
}

// NewSlideshowService creates a new SlideshowService.
func NewSlideshowService(s Session) *SlideshowService {
	return &SlideshowService{session: s}
}

// NewSlideshowServiceHandler builds an HTTP handler for every SlideshowService procedure.
// It returns the path on which to mount the handler.
func NewSlideshowServiceHandler(svc *SlideshowService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()

	// Viewer
	mux.Handle(GetStatusProcedure, connect.NewUnaryHandler(GetStatusProcedure, svc.GetStatus, opts...))
	mux.Handle(ListPresetsProcedure, connect.NewUnaryHandler(ListPresetsProcedure, svc.ListPresets, opts...))
	mux.Handle(WatchStatusProcedure, connect.NewServerStreamHandler(WatchStatusProcedure, svc.WatchStatus, opts...))

	// Control
	mux.Handle(StartProcedure, connect.NewUnaryHandler(StartProcedure, svc.Start, opts...))
	mux.Handle(StopProcedure, connect.NewUnaryHandler(StopProcedure, svc.Stop, opts...))
	mux.Handle(PauseProcedure, connect.NewUnaryHandler(PauseProcedure, svc.Pause, opts...))
	mux.Handle(ResumeProcedure, connect.NewUnaryHandler(ResumeProcedure, svc.Resume, opts...))
	mux.Handle(NextProcedure, connect.NewUnaryHandler(NextProcedure, svc.Next, opts...))
	mux.Handle(PreviousProcedure, connect.NewUnaryHandler(PreviousProcedure, svc.Previous, opts...))
	mux.Handle(SetIntervalProcedure, connect.NewUnaryHandler(SetIntervalProcedure, svc.SetInterval, opts...))
	mux.Handle(LoadProcedure, connect.NewUnaryHandler(LoadProcedure, svc.Load, opts...))
	mux.Handle(EnterFullscreenProcedure, connect.NewUnaryHandler(EnterFullscreenProcedure, svc.EnterFullscreen, opts...))
	mux.Handle(ExitFullscreenProcedure, connect.NewUnaryHandler(ExitFullscreenProcedure, svc.ExitFullscreen, opts...))

	return "/" + SlideshowServiceName + "/", mux
}

// GetStatus returns the current playback status.
func (s *SlideshowService) GetStatus(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return s.statusResponse()
}

// ListPresets returns the selectable intervals and the active one.
func (s *SlideshowService) ListPresets(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	st := message.FromStatus(s.session.Controller().Status())
	return structResponse(message.Presets{
		IntervalSec: st.IntervalSec,
		PresetsSec:  st.PresetsSec,
	}.Map())
}

// WatchStatus streams a snapshot followed by every playback event.
func (s *SlideshowService) WatchStatus(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[structpb.Struct],
) error {
	notifManager := s.session.Notifications()

	// Subscribe before taking the snapshot so no event falls in between.
	// Broadcasts block on the adapter until the snapshot has been sent.
	adapter := &notificationStreamAdapter{stream: stream}
	adapter.mu.Lock()
	subscriptionID := notifManager.Subscribe(adapter)
	err := adapter.sendSnapshotLocked(notifManager.NextSequenceNo(), s.session.Controller().Status())
	adapter.mu.Unlock()
	if err != nil {
		notifManager.Unsubscribe(subscriptionID)
		adapter.close()
		return err
	}

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	// Unsubscribe when done
	notifManager.Unsubscribe(subscriptionID)
	adapter.close()

	return nil
}

// Start begins automatic advancing.
func (s *SlideshowService) Start(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Controller().Start()
	return s.statusResponse()
}

// Stop halts automatic advancing.
func (s *SlideshowService) Stop(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Controller().Stop()
	return s.statusResponse()
}

// Pause freezes the schedule.
func (s *SlideshowService) Pause(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	if err := s.session.Controller().Pause(); err != nil {
		return nil, toConnectError(err)
	}
	return s.statusResponse()
}

// Resume continues a paused slideshow.
func (s *SlideshowService) Resume(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	if err := s.session.Controller().Resume(); err != nil {
		return nil, toConnectError(err)
	}
	return s.statusResponse()
}

// Next shows the next image.
func (s *SlideshowService) Next(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Controller().Next()
	return s.statusResponse()
}

// Previous shows the previous image.
func (s *SlideshowService) Previous(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Controller().Previous()
	return s.statusResponse()
}

// SetInterval changes the advance period.
func (s *SlideshowService) SetInterval(
	ctx context.Context,
	req *connect.Request[durationpb.Duration],
) (*connect.Response[structpb.Struct], error) {
	if err := req.Msg.CheckValid(); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if err := s.session.Controller().SetInterval(req.Msg.AsDuration()); err != nil {
		return nil, toConnectError(err)
	}
	return s.statusResponse()
}

// Load replaces the playlist with the images found in a directory.
func (s *SlideshowService) Load(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.Struct], error) {
	if _, err := s.session.LoadDir(req.Msg.GetValue()); err != nil {
		return nil, toConnectError(err)
	}
	return s.statusResponse()
}

// EnterFullscreen asks the display surface to go fullscreen.
func (s *SlideshowService) EnterFullscreen(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[emptypb.Empty], error) {
	s.session.Controller().EnterFullscreen()
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// ExitFullscreen asks the display surface to leave fullscreen.
func (s *SlideshowService) ExitFullscreen(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[emptypb.Empty], error) {
	s.session.Controller().ExitFullscreen()
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *SlideshowService) statusResponse() (*connect.Response[structpb.Struct], error) {
	return structResponse(message.FromStatus(s.session.Controller().Status()).Map())
}

func structResponse(m map[string]any) (*connect.Response[structpb.Struct], error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(st), nil
}

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, playback.ErrNotRunning), errors.Is(err, playback.ErrNotPaused):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, interval.ErrInvalid),
		errors.Is(err, session.ErrNoMediaDir),
		errors.Is(err, imagedir.ErrNotDirectory):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, fs.ErrNotExist):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		zlog.Error().Msgf("connect: internal error: %v", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialized and rejected once the RPC has returned.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[structpb.Struct]
	closed bool
}

func (a *notificationStreamAdapter) Send(n *notification.Notification) error {
	msg, err := structpb.NewStruct(message.FromNotification(n).Map())
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return errors.New("stream closed")
	}
	return a.stream.Send(msg)
}

// sendSnapshotLocked sends the current state.
// Must be called with a.mu held.
func (a *notificationStreamAdapter) sendSnapshotLocked(seq uint64, status playback.Status) error {
	initial, err := structpb.NewStruct(message.Snapshot(seq, message.FromStatus(status), time.Now()).Map())
	if err != nil {
		return connect.NewError(connect.CodeInternal, err)
	}
	return a.stream.Send(initial)
}

func (a *notificationStreamAdapter) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}
