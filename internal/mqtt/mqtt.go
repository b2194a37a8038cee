package mqtt

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// NewClient connects to the broker and returns the raw client
func NewClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID).SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return client, nil
}
