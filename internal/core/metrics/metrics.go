package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 核心指标集合
type Metrics struct {
	packetsSent     *prometheus.CounterVec
	packetsReceived *prometheus.CounterVec
	bytesSent       *prometheus.CounterVec
	bytesReceived   *prometheus.CounterVec
	transportsLive  prometheus.Gauge
	socketsLive     prometheus.Gauge
}

// New 创建指标集合并注册到给定注册表
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbd",
			Name:      "packets_sent_total",
			Help:      "按命令统计的出站报文数",
		}, []string{"command"}),
		packetsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbd",
			Name:      "packets_received_total",
			Help:      "按命令统计的入站报文数",
		}, []string{"command"}),
		bytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbd",
			Name:      "payload_bytes_sent_total",
			Help:      "按命令统计的出站负载字节数",
		}, []string{"command"}),
		bytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbd",
			Name:      "payload_bytes_received_total",
			Help:      "按命令统计的入站负载字节数",
		}, []string{"command"}),
		transportsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adbd",
			Name:      "transports_live",
			Help:      "当前在线传输数",
		}),
		socketsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "adbd",
			Name:      "sockets_live",
			Help:      "当前在表套接字数",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.packetsSent, m.packetsReceived,
			m.bytesSent, m.bytesReceived,
			m.transportsLive, m.socketsLive,
		)
	}
	return m
}

// PacketSent 记录一个出站报文
func (m *Metrics) PacketSent(command string, payloadLen int) {
	m.packetsSent.WithLabelValues(command).Inc()
	m.bytesSent.WithLabelValues(command).Add(float64(payloadLen))
}

// PacketReceived 记录一个入站报文
func (m *Metrics) PacketReceived(command string, payloadLen int) {
	m.packetsReceived.WithLabelValues(command).Inc()
	m.bytesReceived.WithLabelValues(command).Add(float64(payloadLen))
}

// TransportOnline 传输上线
func (m *Metrics) TransportOnline() {
	m.transportsLive.Inc()
}

// TransportClosed 传输拆除
func (m *Metrics) TransportClosed() {
	m.transportsLive.Dec()
}

// SocketInstalled 套接字入表
func (m *Metrics) SocketInstalled() {
	m.socketsLive.Inc()
}

// SocketRemoved 套接字离表
func (m *Metrics) SocketRemoved() {
	m.socketsLive.Dec()
}
