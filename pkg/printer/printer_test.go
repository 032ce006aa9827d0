package printer

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrinterFromConfig(t *testing.T) {
	p, err := NewPrinterFromConfig("none", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())
	assert.NoError(t, p.Print(context.Background(), []byte("x")))

	_, err = NewPrinterFromConfig("usb", "", "")
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("network", "", "")
	assert.Error(t, err)
	_, err = NewPrinterFromConfig("bluetooth", "", "")
	assert.Error(t, err)
}

func TestUSBPrinterWritesToDevice(t *testing.T) {
	device := filepath.Join(t.TempDir(), "lp0")
	p := NewUSBPrinter(device)
	assert.False(t, p.IsConnected())
	assert.Error(t, p.Print(context.Background(), []byte("x")))

	require.NoError(t, os.WriteFile(device, nil, 0o600))
	assert.True(t, p.IsConnected())
	require.NoError(t, p.Print(context.Background(), []byte("\x1b@hello")))

	got, err := os.ReadFile(device)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x1b@hello"), got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Print(ctx, []byte("late")), context.Canceled)
}

func TestNetworkPrinterWritesBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	p := NewNetworkPrinter(ln.Addr().String())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, p.Print(ctx, []byte("hello")))

	select {
	case data := <-received:
		assert.Equal(t, []byte("hello"), data)
	case <-time.After(2 * time.Second):
		t.Fatal("printer never received data")
	}
}

func TestDocumentLayout(t *testing.T) {
	doc := NewDocument(20)
	doc.KeyValue("Total:", "1085.00").
		ItemLine("General Fund donation for the roof", "500.00").
		Text("a long footer line that needs wrapping").
		PartialCut()

	out := doc.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{ESC, '@'}))
	assert.True(t, bytes.HasSuffix(out, []byte{GS, 'V', 0x01}))

	body := string(out[2 : len(out)-3])
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 20, line)
	}
	assert.Contains(t, body, "Total:       1085.00\n")
	assert.Contains(t, body, "500.00\n")
}

func TestWrapSplitsLongWords(t *testing.T) {
	assert.Equal(t, []string{"abcde", "fgh"}, wrap("abcdefgh", 5))
	assert.Equal(t, []string{"ab cd", "ef"}, wrap("ab cd ef", 5))
	assert.Empty(t, wrap("", 5))
}
