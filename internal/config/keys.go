package config

// WorkerKeyStruct names the Redis queues drained by background
// workers.
type WorkerKeyStruct struct {
	PersistPredictionsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistPredictionsQueue: "persist_predictions_queue",
}

// ChannelKeyStruct names the Redis pub/sub channels.
type ChannelKeyStruct struct {
	// PredictionsLive carries every persisted prediction for live
	// dashboard consumers.
	PredictionsLive string
}

var ChannelKey = &ChannelKeyStruct{
	PredictionsLive: "predictions:live",
}
