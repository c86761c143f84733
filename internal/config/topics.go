package config

const (
	// TopicMiningTask is the NSQ topic carrying inbound mining requests.
	TopicMiningTask = "mining.task"

	// ChannelWorker is the consumer channel shared by worker instances.
	ChannelWorker = "worker"
)
