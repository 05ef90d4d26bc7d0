// Package basis computes the cost basis and the performance of an investment
// ledger. It is local-first and auditable: every figure is derived from the
// transactions and prices it is given, with exact decimal arithmetic.
//
// The core functionalities include:
//   - Cost Basis: replaying the transactions of a symbol against its open lots,
//     under FIFO or weighted average accounting, with a LotMatch audit record
//     for every unit sold.
//   - Profit and Loss: folding per symbol results into a PLReport with realized
//     and unrealized P/L, calendar period buckets and trade statistics.
//   - Benchmarking: time weighted and cash flow weighted returns of the
//     portfolio, compared with benchmark symbols bought with the same cash at
//     the same dates.
//   - DCA Simulation: replaying a periodic investment plan against historical
//     prices.
//
// The package performs no I/O: transactions and prices must be loaded by the
// caller (see the store and market packages). Transactions of a symbol must be
// sorted by date, then id; SortTransactions applies that order.
//
// This package serves as the foundational logic for the `pnl` command-line
// tool.
package basis
