package mcping

import (
	"bufio"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/mba-league/mbabot/internal/domain/minecraft"
	"github.com/mba-league/mbabot/internal/platform/logging"
	"github.com/mba-league/mbabot/internal/platform/resilience"
	"github.com/mba-league/mbabot/internal/usecase"
)

const (
	defaultPort      = 25565
	handshakePacket  = 0x00
	statusStatePing  = 1
	protocolUnknown  = -1
	maxResponseBytes = 1 << 21
)

var errPingTransient = crerr.New("server ping transient failure")

type ClientConfig struct {
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client performs the Minecraft server list ping over raw TCP.
type Client struct {
	dialer         *net.Dialer
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		dialer:         &net.Dialer{Timeout: timeout},
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type statusPayload struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description json.RawMessage `json:"description"`
}

// Ping runs the status handshake against the server and decodes its
// response.
func (c *Client) Ping(ctx context.Context, address string) (minecraft.ServerStatus, error) {
	host, port, err := splitServerAddress(address)
	if err != nil {
		return minecraft.ServerStatus{}, err
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "server ping circuit breaker rejected request", "state", c.breaker.State())
			return minecraft.ServerStatus{}, fmt.Errorf("%w: server ping is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	status, err := c.ping(ctx, host, port)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, errPingTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		c.logger.WarnContext(ctx, "server ping failed", "address", address, "error", err)
		return minecraft.ServerStatus{}, err
	}

	status.Address = address
	return status, nil
}

func (c *Client) ping(ctx context.Context, host string, port uint16) (minecraft.ServerStatus, error) {
	started := time.Now()

	conn, err := c.dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(int(port))))
	if err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("%w: dial server: %v", errPingTransient, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("set connection deadline: %w", err)
	}

	handshake := buildHandshakePacket(host, port)
	defer bytebufferpool.Put(handshake)
	if _, err := conn.Write(handshake.B); err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("%w: send handshake: %v", errPingTransient, err)
	}

	request := buildStatusRequestPacket()
	defer bytebufferpool.Put(request)
	if _, err := conn.Write(request.B); err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("%w: send status request: %v", errPingTransient, err)
	}

	reader := bufio.NewReader(conn)
	raw, err := readStatusResponse(reader)
	if err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("%w: read status response: %v", errPingTransient, err)
	}
	latency := time.Since(started)

	var payload statusPayload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return minecraft.ServerStatus{}, fmt.Errorf("decode status payload: %w", err)
	}

	return minecraft.ServerStatus{
		Online:        true,
		PlayersOnline: payload.Players.Online,
		PlayersMax:    payload.Players.Max,
		Version:       payload.Version.Name,
		MOTD:          parseDescription(payload.Description),
		LatencyMillis: latency.Milliseconds(),
	}, nil
}

// buildHandshakePacket frames the handshake: packet id, protocol
// version, server address, port, next state 1 (status).
func buildHandshakePacket(host string, port uint16) *bytebufferpool.ByteBuffer {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	appendVarint(body, handshakePacket)
	appendVarint(body, protocolUnknown)
	appendVarint(body, int32(len(host)))
	_, _ = body.WriteString(host)
	_ = body.WriteByte(byte(port >> 8))
	_ = body.WriteByte(byte(port))
	appendVarint(body, statusStatePing)

	return framePacket(body.B)
}

func buildStatusRequestPacket() *bytebufferpool.ByteBuffer {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	appendVarint(body, handshakePacket)
	return framePacket(body.B)
}

// framePacket prefixes the body with its varint length.
func framePacket(body []byte) *bytebufferpool.ByteBuffer {
	packet := bytebufferpool.Get()
	appendVarint(packet, int32(len(body)))
	_, _ = packet.Write(body)
	return packet
}

func appendVarint(buf *bytebufferpool.ByteBuffer, value int32) {
	v := uint32(value)
	for {
		if v&^0x7F == 0 {
			_ = buf.WriteByte(byte(v))
			return
		}
		_ = buf.WriteByte(byte(v&0x7F | 0x80))
		v >>= 7
	}
}

func readVarint(r io.ByteReader) (int32, error) {
	var result uint32
	for shift := 0; shift < 35; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << shift
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, fmt.Errorf("varint is too long")
}

func readStatusResponse(reader *bufio.Reader) ([]byte, error) {
	packetLength, err := readVarint(reader)
	if err != nil {
		return nil, fmt.Errorf("read packet length: %w", err)
	}
	if packetLength <= 0 || packetLength > maxResponseBytes {
		return nil, fmt.Errorf("unexpected packet length %d", packetLength)
	}

	packetID, err := readVarint(reader)
	if err != nil {
		return nil, fmt.Errorf("read packet id: %w", err)
	}
	if packetID != handshakePacket {
		return nil, fmt.Errorf("unexpected packet id %#x", packetID)
	}

	payloadLength, err := readVarint(reader)
	if err != nil {
		return nil, fmt.Errorf("read payload length: %w", err)
	}
	if payloadLength <= 0 || payloadLength > maxResponseBytes {
		return nil, fmt.Errorf("unexpected payload length %d", payloadLength)
	}

	raw := make([]byte, payloadLength)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return raw, nil
}

// parseDescription handles the two MOTD shapes servers send: a plain
// string or a chat component object.
func parseDescription(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := sonic.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}

	var component struct {
		Text  string `json:"text"`
		Extra []struct {
			Text string `json:"text"`
		} `json:"extra"`
	}
	if err := sonic.Unmarshal(raw, &component); err != nil {
		return ""
	}

	parts := make([]string, 0, len(component.Extra)+1)
	if component.Text != "" {
		parts = append(parts, component.Text)
	}
	for _, item := range component.Extra {
		if item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

func splitServerAddress(address string) (string, uint16, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", 0, fmt.Errorf("server address is required")
	}

	host, portText, err := net.SplitHostPort(address)
	if err != nil {
		return address, defaultPort, nil
	}

	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server port %q", portText)
	}
	return host, uint16(port), nil
}
