package config

type WorkerKeyStruct struct {
	PersistCalculationsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistCalculationsQueue: "persist_calculations_queue",
}
