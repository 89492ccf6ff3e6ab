package postgres

// migrations returns the ordered schema migration set.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				status TEXT NOT NULL DEFAULT 'draft',
				owner TEXT NOT NULL DEFAULT '',
				data JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS rule_sets (
				id TEXT PRIMARY KEY,
				data JSONB NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS execution_reports (
				execution_id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL,
				status TEXT NOT NULL,
				data JSONB NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_execution_reports_workflow ON execution_reports (workflow_id);
		`,
	}
}
