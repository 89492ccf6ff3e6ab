package registry

import (
	"log/slog"

	"github.com/decisionflow/decisionflow/pkg/executors/action"
	"github.com/decisionflow/decisionflow/pkg/executors/condition"
	"github.com/decisionflow/decisionflow/pkg/executors/datasource"
	"github.com/decisionflow/decisionflow/pkg/executors/decision"
	"github.com/decisionflow/decisionflow/pkg/executors/end"
	"github.com/decisionflow/decisionflow/pkg/executors/ruleset"
	"github.com/decisionflow/decisionflow/pkg/executors/start"
	"github.com/decisionflow/decisionflow/pkg/protocol"
)

// RegisterDefaults registers the seven built-in node executor factories. The
// rule-set source and data-source lookup may be nil when workflows only use
// inline rules and no data_source nodes.
func (r *Registry) RegisterDefaults(logger *slog.Logger, ruleSets protocol.RuleSetSource, dataSources datasource.Lookup) {
	r.RegisterExecutor(start.NewFactory())
	r.RegisterExecutor(condition.NewFactory())
	r.RegisterExecutor(decision.NewFactory())
	r.RegisterExecutor(action.NewFactory())
	r.RegisterExecutor(ruleset.NewFactory(logger, ruleSets))
	r.RegisterExecutor(datasource.NewFactory(dataSources))
	r.RegisterExecutor(end.NewFactory())
}
