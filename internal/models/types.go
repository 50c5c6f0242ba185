package models

import "time"

type BucketInfo struct {
	BucketName     string    `json:"bucket_name" yaml:"bucket_name"`
	Region         string    `json:"region" yaml:"region"`
	Prefix         string    `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	CreationDate   time.Time `json:"creation_date" yaml:"creation_date"`
	ObjectCount    int64     `json:"object_count" yaml:"object_count"`
	TotalSizeBytes int64     `json:"total_size_bytes" yaml:"total_size_bytes"`
	TotalSizeHuman string    `json:"total_size_human" yaml:"total_size_human"`
	LastModified   time.Time `json:"last_modified" yaml:"last_modified"`
	APIEndpoint    string    `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error" yaml:"error"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Command   string `json:"command" yaml:"command"`
}
