package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"layeh.com/gopus"
)

type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

func newOpusEncoder() (frameEncoder, error) {
	enc, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return enc, nil
}

// StreamToDiscord encodes 20ms PCM frames from stream and pushes them to send
// until the stream ends or stop is closed. End of stream is not an error.
func StreamToDiscord(stream io.Reader, stop <-chan struct{}, send chan<- []byte, encoder frameEncoder) error {
	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if _, err := io.ReadFull(stream, pcmBuf); err != nil {
			select {
			case <-stop:
				return nil
			default:
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case send <- opus:
		case <-stop:
			return nil
		}
	}
}
