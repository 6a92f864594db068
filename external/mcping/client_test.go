package mcping

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/mba-league/mbabot/internal/platform/logging"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 255, 25565, 2097151, -1}
	for _, value := range values {
		buf := bytebufferpool.Get()
		appendVarint(buf, value)

		decoded, err := readVarint(bytes.NewReader(buf.B))
		bytebufferpool.Put(buf)
		if err != nil {
			t.Fatalf("decode varint %d: %v", value, err)
		}
		if decoded != value {
			t.Fatalf("varint round trip: expected %d, got %d", value, decoded)
		}
	}
}

func TestBuildHandshakePacket(t *testing.T) {
	packet := buildHandshakePacket("mc.example.com", 25565)
	defer bytebufferpool.Put(packet)

	reader := bytes.NewReader(packet.B)
	length, err := readVarint(reader)
	if err != nil {
		t.Fatalf("read frame length: %v", err)
	}
	if int(length) != reader.Len() {
		t.Fatalf("frame length %d does not match body size %d", length, reader.Len())
	}

	packetID, err := readVarint(reader)
	if err != nil {
		t.Fatalf("read packet id: %v", err)
	}
	if packetID != handshakePacket {
		t.Fatalf("expected packet id %#x, got %#x", handshakePacket, packetID)
	}

	protocol, err := readVarint(reader)
	if err != nil {
		t.Fatalf("read protocol version: %v", err)
	}
	if protocol != protocolUnknown {
		t.Fatalf("expected protocol %d, got %d", protocolUnknown, protocol)
	}

	hostLen, err := readVarint(reader)
	if err != nil {
		t.Fatalf("read host length: %v", err)
	}
	host := make([]byte, hostLen)
	if _, err := io.ReadFull(reader, host); err != nil {
		t.Fatalf("read host: %v", err)
	}
	if string(host) != "mc.example.com" {
		t.Fatalf("unexpected host %q", host)
	}
}

func TestParseDescription(t *testing.T) {
	if got := parseDescription([]byte(`"A Minecraft Server"`)); got != "A Minecraft Server" {
		t.Fatalf("plain string: got %q", got)
	}

	component := []byte(`{"text":"MBA ","extra":[{"text":"League"},{"text":" Server"}]}`)
	if got := parseDescription(component); got != "MBA League Server" {
		t.Fatalf("chat component: got %q", got)
	}

	if got := parseDescription(nil); got != "" {
		t.Fatalf("empty description: got %q", got)
	}
}

func TestSplitServerAddress(t *testing.T) {
	host, port, err := splitServerAddress("mc.example.com")
	if err != nil {
		t.Fatalf("split bare host: %v", err)
	}
	if host != "mc.example.com" || port != defaultPort {
		t.Fatalf("bare host: got %q:%d", host, port)
	}

	host, port, err = splitServerAddress("mc.example.com:25570")
	if err != nil {
		t.Fatalf("split host with port: %v", err)
	}
	if host != "mc.example.com" || port != 25570 {
		t.Fatalf("host with port: got %q:%d", host, port)
	}

	if _, _, err := splitServerAddress(""); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestClient_Ping(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() {
		_ = listener.Close()
	}()

	statusJSON := `{"version":{"name":"1.21","protocol":767},"players":{"max":20,"online":7},"description":{"text":"MBA Server"}}`

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() {
			_ = conn.Close()
		}()

		reader := bufio.NewReader(conn)
		for i := 0; i < 2; i++ {
			length, err := readVarint(reader)
			if err != nil {
				return
			}
			if _, err := io.CopyN(io.Discard, reader, int64(length)); err != nil {
				return
			}
		}

		body := bytebufferpool.Get()
		appendVarint(body, handshakePacket)
		appendVarint(body, int32(len(statusJSON)))
		_, _ = body.WriteString(statusJSON)
		response := framePacket(body.B)
		bytebufferpool.Put(body)

		_, _ = conn.Write(response.B)
		bytebufferpool.Put(response)
	}()

	client := NewClient(ClientConfig{Timeout: 2 * time.Second, Logger: logging.NewNop()})

	status, err := client.Ping(t.Context(), listener.Addr().String())
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if !status.Online {
		t.Fatal("expected server to report online")
	}
	if status.PlayersOnline != 7 || status.PlayersMax != 20 {
		t.Fatalf("unexpected player counts: %d/%d", status.PlayersOnline, status.PlayersMax)
	}
	if status.Version != "1.21" {
		t.Fatalf("unexpected version %q", status.Version)
	}
	if status.MOTD != "MBA Server" {
		t.Fatalf("unexpected motd %q", status.MOTD)
	}
	if status.Address != listener.Addr().String() {
		t.Fatalf("unexpected address %q", status.Address)
	}
}

func TestClient_Ping_Unreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	address := listener.Addr().String()
	_ = listener.Close()

	client := NewClient(ClientConfig{Timeout: 500 * time.Millisecond, Logger: logging.NewNop()})

	if _, err := client.Ping(t.Context(), address); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
