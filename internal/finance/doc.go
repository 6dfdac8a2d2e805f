// Package finance holds the pure calculators behind balances, budgets,
// reports, forecasts and insights.
//
// Nothing in this package touches storage or reads the wall clock. Callers
// pass the rows they loaded and an explicit "now"; every function returns
// freshly derived values and never mutates its inputs.
package finance
