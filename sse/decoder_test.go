package sse_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/ragchat/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll feeds chunks in order and collects every frame returned.
func feedAll(d *sse.Decoder, chunks ...[]byte) []sse.Frame {
	var frames []sse.Frame
	for _, c := range chunks {
		frames = append(frames, d.Feed(c)...)
	}
	return frames
}

// splitEvery cuts s into chunks of n bytes.
func splitEvery(s string, n int) [][]byte {
	var out [][]byte
	b := []byte(s)
	for len(b) > n {
		out = append(out, b[:n])
		b = b[n:]
	}
	if len(b) > 0 {
		out = append(out, b)
	}
	return out
}

func TestDecoder_Feed(t *testing.T) {
	t.Parallel()

	t.Run("returns complete frames and retains remainder", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:{\"token\":\"a\"}\n\ndata:{\"tok"))
		assert.Equal(t, []sse.Frame{`data:{"token":"a"}`}, frames)
		assert.Equal(t, `data:{"tok`, d.Buffered())
	})

	t.Run("no delimiter leaves buffer growing", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Empty(t, d.Feed([]byte("data:")))
		assert.Empty(t, d.Feed([]byte("{}")))
		assert.Equal(t, "data:{}", d.Buffered())
	})

	t.Run("multiple frames in one chunk keep order", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:1\n\ndata:2\n\ndata:3\n\n"))
		assert.Equal(t, []sse.Frame{"data:1", "data:2", "data:3"}, frames)
		assert.Equal(t, "", d.Buffered())
	})

	t.Run("delimiter split across chunks", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Empty(t, d.Feed([]byte("data:1\n")))
		assert.Equal(t, []sse.Frame{"data:1"}, d.Feed([]byte("\ndata:2")))
		assert.Equal(t, "data:2", d.Buffered())
	})

	t.Run("empty segments between delimiters are frames", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:1\n\n\n\ndata:2\n\n"))
		assert.Equal(t, []sse.Frame{"data:1", "", "data:2"}, frames)
	})

	t.Run("odd newline run keeps trailing newline", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Equal(t, []sse.Frame{"data:1"}, d.Feed([]byte("data:1\n\n\n")))
		assert.Equal(t, "\n", d.Buffered())
		assert.Equal(t, []sse.Frame{""}, d.Feed([]byte("\ndata:2")))
		assert.Equal(t, "data:2", d.Buffered())
	})

	t.Run("empty chunk is a no-op", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		d.Feed([]byte("data:partial"))
		assert.Nil(t, d.Feed(nil))
		assert.Nil(t, d.Feed([]byte{}))
		assert.Equal(t, "data:partial", d.Buffered())
		assert.Equal(t, sse.StateStreaming, d.State())
	})

	t.Run("any split yields the same frames", func(t *testing.T) {
		t.Parallel()
		input := "data:{\"token\":\"héllo\"}\n\nevent: ping\n\ndata:{\"token\":\"wörld 🌍\"}\n\ndata:{\"token\":\"tail"
		want := []sse.Frame{
			`data:{"token":"héllo"}`,
			"event: ping",
			`data:{"token":"wörld 🌍"}`,
		}
		for n := 1; n <= len(input); n++ {
			d := sse.NewDecoder()
			got := feedAll(d, splitEvery(input, n)...)
			require.Equal(t, want, got, "chunk size %d", n)
			require.Equal(t, `data:{"token":"tail`, d.Buffered(), "chunk size %d", n)
		}
	})

	t.Run("multi-byte character split at chunk boundary", func(t *testing.T) {
		t.Parallel()
		euro := []byte("€") // 0xE2 0x82 0xAC
		d := sse.NewDecoder()
		assert.Empty(t, d.Feed(append([]byte("data:{\"token\":\""), euro[:1]...)))
		assert.Empty(t, d.Feed(euro[1:2]))
		frames := d.Feed(append(euro[2:], []byte("\"}\n\n")...))
		require.Len(t, frames, 1)
		assert.Equal(t, sse.Frame(`data:{"token":"€"}`), frames[0])
		assert.NotContains(t, string(frames[0]), "�")
	})

	t.Run("invalid bytes become replacement characters", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:\xff\n\n"))
		assert.Equal(t, []sse.Frame{"data:�"}, frames)
	})

	t.Run("leading byte order mark is dropped", func(t *testing.T) {
		t.Parallel()
		input := "\xef\xbb\xbfdata:{\"token\":\"é\"}\n\n"
		d := sse.NewDecoder()
		frames := feedAll(d, splitEvery(input, 1)...)
		require.Equal(t, []sse.Frame{`data:{"token":"é"}`}, frames)
		evt, err := d.Decode(frames[0])
		require.NoError(t, err)
		assert.Equal(t, "é", evt.Text())
	})

	t.Run("byte order mark after the start is kept", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:1\n\n\xef\xbb\xbfdata:2\n\n"))
		assert.Equal(t, []sse.Frame{"data:1", "\ufeffdata:2"}, frames)
	})

	t.Run("short first chunk is held until it can be checked", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Empty(t, d.Feed([]byte("da")))
		assert.Equal(t, []sse.Frame{"data:x"}, d.Feed([]byte("ta:x\n\n")))
	})

	t.Run("large chunk decodes fully", func(t *testing.T) {
		t.Parallel()
		big := strings.Repeat("data:{\"token\":\"x\"}\n\n", 1000)
		d := sse.NewDecoder()
		assert.Len(t, d.Feed([]byte(big)), 1000)
		assert.Equal(t, "", d.Buffered())
	})
}

func TestDecoder_Decode(t *testing.T) {
	t.Parallel()

	t.Run("token field", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		evt, err := d.Decode(`data:{"token":"hi"}`)
		require.NoError(t, err)
		require.NotNil(t, evt.Token)
		assert.Equal(t, "hi", *evt.Token)
		assert.Equal(t, "hi", evt.Text())
	})

	t.Run("space after prefix", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		evt, err := d.Decode(`data: {"token":"hi"}`)
		require.NoError(t, err)
		assert.Equal(t, "hi", evt.Text())
	})

	t.Run("missing token field", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		evt, err := d.Decode(`data:{"done":true}`)
		require.NoError(t, err)
		assert.Nil(t, evt.Token)
		assert.Equal(t, "", evt.Text())
	})

	t.Run("malformed json is a decode failure", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		_, err := d.Decode("data:not-json")
		var de *sse.DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, sse.Frame("data:not-json"), de.Frame)
		assert.Equal(t, sse.StateStreaming, d.State())
	})

	t.Run("non-string token is a decode failure", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		_, err := d.Decode(`data:{"token":5}`)
		var de *sse.DecodeError
		assert.ErrorAs(t, err, &de)
	})

	t.Run("frame without prefix", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		_, err := d.Decode("event: ping")
		assert.ErrorIs(t, err, sse.ErrNoData)
	})

	t.Run("malformed frame does not stop later frames", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		frames := d.Feed([]byte("data:{\"token\":\"a\"}\n\ndata:oops\n\ndata:{\"token\":\"b\"}\n\n"))
		var tokens []string
		for _, f := range frames {
			evt, err := d.Decode(f)
			if err != nil {
				continue
			}
			tokens = append(tokens, evt.Text())
		}
		assert.Equal(t, []string{"a", "b"}, tokens)
	})
}

func TestDecoder_EndToEnd(t *testing.T) {
	t.Parallel()

	d := sse.NewDecoder()
	chunks := []string{"data:{\"tok", "en\":\"He\"}\n\n", "data:{\"token\":\"llo\"}\n\n"}
	var msg strings.Builder
	for _, c := range chunks {
		for _, f := range d.Feed([]byte(c)) {
			evt, err := d.Decode(f)
			require.NoError(t, err)
			msg.WriteString(evt.Text())
		}
	}
	d.Finish()
	assert.Equal(t, "Hello", msg.String())
}

func TestDecoder_Finish(t *testing.T) {
	t.Parallel()

	t.Run("discards partial frame and moves to done", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		assert.Empty(t, d.Feed([]byte("data:{\"token\":\"par")))
		d.Finish()
		assert.Equal(t, sse.StateDone, d.State())
		assert.Equal(t, "", d.Buffered())
	})

	t.Run("feed after finish is a no-op", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		d.Finish()
		assert.Nil(t, d.Feed([]byte("data:{\"token\":\"x\"}\n\n")))
		assert.Equal(t, "", d.Buffered())
		assert.Equal(t, sse.StateDone, d.State())
	})

	t.Run("discards held back multi-byte prefix", func(t *testing.T) {
		t.Parallel()
		d := sse.NewDecoder()
		d.Feed([]byte{0xE2, 0x82})
		d.Finish()
		assert.Equal(t, "", d.Buffered())
	})
}

func TestState_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "streaming", sse.StateStreaming.String())
	assert.Equal(t, "done", sse.StateDone.String())
}
