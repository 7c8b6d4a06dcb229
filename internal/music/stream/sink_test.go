package stream

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"
)

type fakeEncoder struct{}

func (fakeEncoder) Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error) {
	return []byte{0xF8, 0xFF, 0xFE}, nil
}

func newFakeEncoder() (frameEncoder, error) { return fakeEncoder{}, nil }

const frameBytes = frameSize * channels * 2

func TestStreamToDiscordEndsCleanlyOnEOF(t *testing.T) {
	send := make(chan []byte, 8)
	// three full frames plus a partial one
	pcm := bytes.NewReader(make([]byte, frameBytes*3+100))

	if err := StreamToDiscord(pcm, make(chan struct{}), send, fakeEncoder{}); err != nil {
		t.Fatalf("StreamToDiscord: %v", err)
	}
	if len(send) != 3 {
		t.Errorf("sent %d frames, want 3", len(send))
	}
}

func TestStreamToDiscordStops(t *testing.T) {
	stop := make(chan struct{})
	close(stop)
	send := make(chan []byte)

	if err := StreamToDiscord(bytes.NewReader(make([]byte, frameBytes)), stop, send, fakeEncoder{}); err != nil {
		t.Fatalf("StreamToDiscord: %v", err)
	}
}

func TestStreamToDiscordReadError(t *testing.T) {
	boom := errors.New("broken pipe")
	r := io.MultiReader(bytes.NewReader(make([]byte, 10)), errReader{boom})

	err := StreamToDiscord(r, make(chan struct{}), make(chan []byte, 1), fakeEncoder{})
	if !errors.Is(err, boom) {
		t.Errorf("got %v, want read error", err)
	}
}

type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

type fakeVoice struct {
	mu           sync.Mutex
	send         chan []byte
	speaking     []bool
	disconnected int
	opened       []string
	pipes        []*io.PipeWriter
	openErr      error
}

func newFakeVoice() *fakeVoice {
	v := &fakeVoice{send: make(chan []byte, 64)}
	go func() {
		for range v.send {
		}
	}()
	return v
}

func (v *fakeVoice) Speaking(b bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.speaking = append(v.speaking, b)
	return nil
}

func (v *fakeVoice) Disconnect() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disconnected++
	return nil
}

// open hands out a pipe that blocks until the test writes or closes it.
func (v *fakeVoice) open(url string, filters FilterConfig) (io.ReadCloser, func(), error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.openErr != nil {
		return nil, nil, v.openErr
	}
	r, w := io.Pipe()
	v.opened = append(v.opened, url)
	v.pipes = append(v.pipes, w)
	var once sync.Once
	return r, func() { once.Do(func() { w.CloseWithError(errors.New("killed")) }) }, nil
}

func (v *fakeVoice) pipe(i int) *io.PipeWriter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pipes[i]
}

func (v *fakeVoice) sink() *DiscordSink {
	return newSink(v.send, v.Speaking, v.Disconnect, v.open, newFakeEncoder)
}

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to finish")
	}
}

func TestSinkIdle(t *testing.T) {
	s := newFakeVoice().sink()
	if s.IsPlaying() || s.IsPaused() {
		t.Error("new sink should be idle")
	}
	waitDone(t, s.Done())
	if err := s.Stop(); err != nil {
		t.Errorf("Stop on idle sink: %v", err)
	}
}

func TestSinkPlaysUntilEOF(t *testing.T) {
	v := newFakeVoice()
	s := v.sink()

	if err := s.Play("https://cdn/a", DefaultFilters()); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !s.IsPlaying() {
		t.Error("sink should be playing")
	}
	done := s.Done()

	w := v.pipe(0)
	if _, err := w.Write(make([]byte, frameBytes*2)); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.Close()

	waitDone(t, done)
	if s.IsPlaying() {
		t.Error("sink should be idle after EOF")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.speaking) != 2 || !v.speaking[0] || v.speaking[1] {
		t.Errorf("speaking = %v, want [true false]", v.speaking)
	}
}

func TestSinkRejectsConcurrentPlay(t *testing.T) {
	v := newFakeVoice()
	s := v.sink()

	if err := s.Play("a", FilterConfig{}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := s.Play("b", FilterConfig{}); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("second Play: got %v, want ErrAlreadyPlaying", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if s.IsPlaying() {
		t.Error("sink should be idle after Stop")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}

	if err := s.Play("c", FilterConfig{}); err != nil {
		t.Fatalf("Play after Stop: %v", err)
	}
	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if s.IsPlaying() || v.disconnected != 1 {
		t.Errorf("playing=%v disconnected=%d", s.IsPlaying(), v.disconnected)
	}
}

func TestSinkOpenFailure(t *testing.T) {
	v := newFakeVoice()
	v.openErr = errors.New("ffmpeg missing")
	s := v.sink()

	if err := s.Play("a", FilterConfig{}); err == nil {
		t.Fatal("expected error")
	}
	if s.IsPlaying() {
		t.Error("failed Play must leave the sink idle")
	}
}

func TestSinkRefusesPlayAfterDisconnect(t *testing.T) {
	v := newFakeVoice()
	s := v.sink()

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := s.Play("a", FilterConfig{}); !errors.Is(err, ErrSinkClosed) {
		t.Errorf("Play after Disconnect: got %v, want ErrSinkClosed", err)
	}
	if s.IsPlaying() {
		t.Error("disconnected sink must stay idle")
	}
	if err := s.Disconnect(); err != nil {
		t.Errorf("second Disconnect: %v", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.opened) != 0 || v.disconnected != 1 {
		t.Errorf("opened=%v disconnected=%d", v.opened, v.disconnected)
	}
}
