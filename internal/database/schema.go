package database

const SegmentsTable = "customer_segments"

func GetPostgresSegmentsSchema() string {
	return `
		CREATE TABLE IF NOT EXISTS customer_segments (
			run_id VARCHAR(36) NOT NULL,
			customer_id VARCHAR(255) NOT NULL,
			recency INT NOT NULL,
			frequency INT NOT NULL,
			monetary DOUBLE PRECISION NOT NULL,
			segment INT NOT NULL,
			tier VARCHAR(32) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, customer_id)
		);
	`
}

func GetMySQLSegmentsSchema() string {
	return `
		CREATE TABLE IF NOT EXISTS customer_segments (
			run_id VARCHAR(36) NOT NULL,
			customer_id VARCHAR(255) NOT NULL,
			recency INT NOT NULL,
			frequency INT NOT NULL,
			monetary DOUBLE NOT NULL,
			segment INT NOT NULL,
			tier VARCHAR(32) NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (run_id, customer_id)
		);
	`
}

func GetSQLiteSegmentsSchema() string {
	return `
		CREATE TABLE IF NOT EXISTS customer_segments (
			run_id TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			recency INTEGER NOT NULL,
			frequency INTEGER NOT NULL,
			monetary REAL NOT NULL,
			segment INTEGER NOT NULL,
			tier TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (run_id, customer_id)
		);
	`
}

/*
MongoDB document structure:

customer_segments: {
  _id: <run_id>/<customer_id>,
  run_id: <string>,
  customer_id: <string>,
  recency: <number>,
  frequency: <number>,
  monetary: <number>,
  segment: <number>,
  tier: <string>,
  created_at: <date>
}

*/
