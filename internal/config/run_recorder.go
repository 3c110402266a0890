package config

import (
	"os"

	"github.com/spf13/viper"
)

const (
	runResultsDisabledEnv = "RUN_RESULTS_DISABLED"

	influxDBURLEnv    = "INFLUXDB_URL"
	influxDBTokenEnv  = "INFLUXDB_TOKEN"
	influxDBOrgEnv    = "INFLUXDB_ORG"
	influxDBBucketEnv = "INFLUXDB_BUCKET"

	bigQueryProjectIDEnv = "BIGQUERY_PROJECT_ID"
	bigQueryDatasetEnv   = "BIGQUERY_DATASET"
	bigQueryTableEnv     = "BIGQUERY_TABLE"

	defaultInfluxDBURL    = "http://localhost:8086"
	defaultRunResultsName = "deadline_runs"
)

type RunRecorderConfig struct {
	Disabled bool

	InfluxDBURL    string
	InfluxDBToken  string
	InfluxDBOrg    string
	InfluxDBBucket string

	BigQueryProjectID string
	BigQueryDataset   string
	BigQueryTable     string
}

func LoadRunRecorderConfig(v *viper.Viper) *RunRecorderConfig {
	return &RunRecorderConfig{
		Disabled: v.GetString(runResultsDisabledEnv) == "true",

		InfluxDBURL:    stringOr(v, influxDBURLEnv, defaultInfluxDBURL),
		InfluxDBToken:  v.GetString(influxDBTokenEnv),
		InfluxDBOrg:    v.GetString(influxDBOrgEnv),
		InfluxDBBucket: stringOr(v, influxDBBucketEnv, defaultRunResultsName),

		BigQueryProjectID: stringOr(v, bigQueryProjectIDEnv, os.Getenv("GOOGLE_CLOUD_PROJECT")),
		BigQueryDataset:   stringOr(v, bigQueryDatasetEnv, defaultRunResultsName),
		BigQueryTable:     stringOr(v, bigQueryTableEnv, defaultRunResultsName),
	}
}
