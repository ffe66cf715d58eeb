package tasks

import (
	"text2phenotype.com/negex/redis"
)

type Client struct {
	Chunks NegationTasks
	Jobs   JobTasks
}

// NewClient connects to the chunk and job databases configured in the environment.
func NewClient() (Client, error) {
	cfg, err := redis.ReadConfig()
	if err != nil {
		return Client{}, err
	}
	return NewClientWithStores(redis.NewClient(cfg, ChunksDB), redis.NewClient(cfg, JobsDB)), nil
}

func NewClientWithStores(chunks Store, jobs Store) Client {
	return Client{
		Chunks: NegationTasks{store: chunks},
		Jobs:   JobTasks{store: jobs},
	}
}

func (client *Client) Close() {
	_ = client.Chunks.store.Close()
	_ = client.Jobs.store.Close()
}
