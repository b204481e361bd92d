package rabbitmq

import (
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// NewRabbitMQConn dials the broker at url.
func NewRabbitMQConn(url string) (*amqp.Connection, error) {
	if url == "" {
		return nil, errors.New("rabbitmq url is empty")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "amqp.Dial")
	}
	return conn, nil
}
