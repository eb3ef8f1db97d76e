package kafka

import "fmt"

// TopicPrefix is prepended to every topic name so all storefront topics
// share a single namespace on the broker.
const TopicPrefix = "rststore"

// Topic builds a fully-qualified topic name from a domain and an action,
// e.g. Topic("order", "placed") -> "rststore.order.placed".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
