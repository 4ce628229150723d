package connect

import (
	"context"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/slidebox/internal/api/message"
)

// Client calls SlideshowService procedures.
type Client struct {
	token string

	getStatus       *connect.Client[emptypb.Empty, structpb.Struct]
	listPresets     *connect.Client[emptypb.Empty, structpb.Struct]
	watchStatus     *connect.Client[emptypb.Empty, structpb.Struct]
	start           *connect.Client[emptypb.Empty, structpb.Struct]
	stop            *connect.Client[emptypb.Empty, structpb.Struct]
	pause           *connect.Client[emptypb.Empty, structpb.Struct]
	resume          *connect.Client[emptypb.Empty, structpb.Struct]
	next            *connect.Client[emptypb.Empty, structpb.Struct]
	previous        *connect.Client[emptypb.Empty, structpb.Struct]
	setInterval     *connect.Client[durationpb.Duration, structpb.Struct]
	load            *connect.Client[wrapperspb.StringValue, structpb.Struct]
	enterFullscreen *connect.Client[emptypb.Empty, emptypb.Empty]
	exitFullscreen  *connect.Client[emptypb.Empty, emptypb.Empty]
}

// NewClient creates a client for the server at baseURL.
// token is sent on control procedures; it may be empty for viewer-only use.
func NewClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		token:           token,
		getStatus:       connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+GetStatusProcedure, opts...),
		listPresets:     connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+ListPresetsProcedure, opts...),
		watchStatus:     connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+WatchStatusProcedure, opts...),
		start:           connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+StartProcedure, opts...),
		stop:            connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+StopProcedure, opts...),
		pause:           connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+PauseProcedure, opts...),
		resume:          connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+ResumeProcedure, opts...),
		next:            connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+NextProcedure, opts...),
		previous:        connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+PreviousProcedure, opts...),
		setInterval:     connect.NewClient[durationpb.Duration, structpb.Struct](httpClient, baseURL+SetIntervalProcedure, opts...),
		load:            connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+LoadProcedure, opts...),
		enterFullscreen: connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+EnterFullscreenProcedure, opts...),
		exitFullscreen:  connect.NewClient[emptypb.Empty, emptypb.Empty](httpClient, baseURL+ExitFullscreenProcedure, opts...),
	}
}

// GetStatus returns the current status.
func (c *Client) GetStatus(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.getStatus, false)
}

// ListPresets returns the selectable intervals.
func (c *Client) ListPresets(ctx context.Context) (message.Presets, error) {
	var out message.Presets
	resp, err := c.listPresets.CallUnary(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return out, err
	}
	err = decode(resp.Msg, &out)
	return out, err
}

// Start begins automatic advancing.
func (c *Client) Start(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.start, true)
}

// Stop halts automatic advancing.
func (c *Client) Stop(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.stop, true)
}

// Pause freezes the schedule.
func (c *Client) Pause(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.pause, true)
}

// Resume continues a paused slideshow.
func (c *Client) Resume(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.resume, true)
}

// Next shows the next image.
func (c *Client) Next(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.next, true)
}

// Previous shows the previous image.
func (c *Client) Previous(ctx context.Context) (message.Status, error) {
	return c.callStatus(ctx, c.previous, true)
}

// SetInterval changes the advance period.
func (c *Client) SetInterval(ctx context.Context, d time.Duration) (message.Status, error) {
	var out message.Status
	resp, err := c.setInterval.CallUnary(ctx, controlRequest(c.token, durationpb.New(d)))
	if err != nil {
		return out, err
	}
	err = decode(resp.Msg, &out)
	return out, err
}

// Load replaces the playlist with the images in dir, a path on the server host.
func (c *Client) Load(ctx context.Context, dir string) (message.Status, error) {
	var out message.Status
	resp, err := c.load.CallUnary(ctx, controlRequest(c.token, wrapperspb.String(dir)))
	if err != nil {
		return out, err
	}
	err = decode(resp.Msg, &out)
	return out, err
}

// EnterFullscreen asks the display to go fullscreen.
func (c *Client) EnterFullscreen(ctx context.Context) error {
	_, err := c.enterFullscreen.CallUnary(ctx, controlRequest(c.token, &emptypb.Empty{}))
	return err
}

// ExitFullscreen asks the display to leave fullscreen.
func (c *Client) ExitFullscreen(ctx context.Context) error {
	_, err := c.exitFullscreen.CallUnary(ctx, controlRequest(c.token, &emptypb.Empty{}))
	return err
}

// WatchStatus calls fn for the initial snapshot and every later event
// until ctx is cancelled, the server closes the stream, or fn returns an error.
func (c *Client) WatchStatus(ctx context.Context, fn func(message.Event) error) error {
	stream, err := c.watchStatus.CallServerStream(ctx, connect.NewRequest(&emptypb.Empty{}))
	if err != nil {
		return err
	}
	defer stream.Close()

	for stream.Receive() {
		var ev message.Event
		if err := decode(stream.Msg(), &ev); err != nil {
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	return stream.Err()
}

func (c *Client) callStatus(ctx context.Context, client *connect.Client[emptypb.Empty, structpb.Struct], control bool) (message.Status, error) {
	var out message.Status
	req := connect.NewRequest(&emptypb.Empty{})
	if control && c.token != "" {
		req.Header().Set(AdminTokenHeader, c.token)
	}
	resp, err := client.CallUnary(ctx, req)
	if err != nil {
		return out, err
	}
	err = decode(resp.Msg, &out)
	return out, err
}

// controlRequest wraps msg and attaches the admin token.
func controlRequest[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set(AdminTokenHeader, token)
	}
	return req
}

// decode converts a structpb message into one of the message types.
func decode(st *structpb.Struct, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := dec.Decode(st.AsMap()); err != nil {
		return errors.Wrap(err, "failed to decode message")
	}
	return nil
}
