package kafka

import "github.com/IBM/sarama"

const clientID = "venuecal"

// baseConfig fills the settings both sides rely on. Callers may pass their own
// config; only unset fields are touched.
func baseConfig(cfg *sarama.Config) *sarama.Config {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	if cfg.ClientID == "" || cfg.ClientID == "sarama" {
		cfg.ClientID = clientID
	}
	if !cfg.Version.IsAtLeast(sarama.V2_5_0_0) {
		cfg.Version = sarama.V2_5_0_0
	}
	return cfg
}
