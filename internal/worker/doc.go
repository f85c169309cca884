// Package worker implements the transform worker lifecycle and Redis Streams
// integration.
//
// The worker reads transform jobs from a Redis stream, runs each one through
// the pipeline with buffered output, and publishes the rendered text and the
// run counters to a result stream.
//
// Example usage:
//
//	cfg, _ := config.Load()
//	redisClient := redis.NewClient(&redis.Options{...})
//	p := pipeline.New(template.NewEngine(nil, logger), logger, pipeline.Options{RemoveNewlines: true})
//
//	worker := worker.NewWorker(cfg, redisClient, p, logger)
//	if err := worker.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer worker.Stop()
//
// A job message carries its JSON payload in the "data" field:
//
//	{"job_id": "42", "template_path": "/templates/customer.json",
//	 "input_path": "/data/customers.csv", "format": "xsv",
//	 "delimiter": ",", "infer_columns": true}
//
// Failed jobs are published to the result stream with an ".errors" suffix.
//
// Health checks are provided via a separate HTTP server:
//
//	healthServer := worker.NewHealthServer(8083, redisClient, worker.Running, logger)
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
