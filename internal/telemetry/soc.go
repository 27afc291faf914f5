package telemetry

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// SoCListener subscribes to a battery state-of-charge topic and keeps the
// most recent reading. The engine never polls: callers take a snapshot
// with Current before each calculation.
type SoCListener struct {
	client mqtt.Client

	mu      sync.RWMutex
	value   float64
	at      time.Time
	hasData bool
}

// Listen connects to the broker and subscribes to the given topic.
// Payloads are plain percentages ("73.5"); non-numeric sensor dropouts
// are skipped.
func Listen(broker, topic, clientID string) (*SoCListener, error) {
	l := &SoCListener{}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:1883", broker))
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	})

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Printf("Connected to MQTT broker at %s", broker)

		token := client.Subscribe(topic, 0, func(client mqtt.Client, msg mqtt.Message) {
			l.handle(string(msg.Payload()))
		})
		if token.Wait() && token.Error() != nil {
			log.Printf("Failed to subscribe to topic %s: %v", topic, token.Error())
		} else {
			log.Printf("Subscribed to topic: %s", topic)
		}
	})

	l.client = mqtt.NewClient(opts)
	if token := l.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
	}

	return l, nil
}

func (l *SoCListener) handle(payload string) {
	payload = strings.TrimSpace(payload)

	// Sensor has dropped out
	if payload == "" || payload == "Undefined" || payload == "unavailable" {
		return
	}

	value, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		log.Printf("Ignoring non-numeric SoC payload %q", payload)
		return
	}
	if value < 0 || value > 100 {
		log.Printf("Ignoring out-of-range SoC payload %q", payload)
		return
	}

	l.mu.Lock()
	l.value = value
	l.at = time.Now()
	l.hasData = true
	l.mu.Unlock()
}

// Current returns the latest state-of-charge percentage and whether any
// reading has arrived yet.
func (l *SoCListener) Current() (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.hasData
}

// Close disconnects from the broker.
func (l *SoCListener) Close() {
	l.client.Disconnect(250)
}
