package worker

// MiningTaskPayload is the message body published to the mining task topic.
// Reply routing metadata travels inside the payload because NSQ carries no
// message headers.
type MiningTaskPayload struct {
	Key         string `json:"key"`
	BucketName  string `json:"bucketName"`
	Prompt      string `json:"prompt,omitempty"`
	Credentials string `json:"credentials"`

	CorrelationID string `json:"correlation_id"`
	ReplyTo       string `json:"reply_to,omitempty"`
}

type SuccessResponse struct {
	Status        string  `json:"status"`
	Key           string  `json:"key"`
	ExtractedInfo string  `json:"extracted_info"`
	TimeTaken     float64 `json:"time_taken,omitempty"`
	CorrelationID string  `json:"correlation_id"`
}

type ErrorResponse struct {
	Status        string  `json:"status"`
	Key           *string `json:"key"`
	Error         string  `json:"error"`
	CorrelationID string  `json:"correlation_id"`
}
