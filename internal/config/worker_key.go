package config

type WorkerKeyStruct struct {
	MetricsRecomputeQueue string
}

var WorkerKey = &WorkerKeyStruct{
	MetricsRecomputeQueue: "metrics_recompute_queue",
}
