// Package diffeq classifies ordinary differential equations and checks
// proposed solutions.
//
// Equations are plain text in calculator notation over the independent
// variable x and the unknown function y, with derivatives written as primes:
//
//	y'' + 3*y' + 2*y = 0
//	y′ = x*y
//
// The package offers four operations:
//   - CheckLinearity / ClassifyLinearity: lexical screen, then symbolic proof
//     over the coefficients of y, y', y'' and y'''
//   - VerifySolution: substitutes y = f(x) and samples the residual
//   - RenderPlot: a PNG of the candidate solution with singularity markers
//   - HandleToolCall: the same operations behind a JSON tool interface
//
// All of them are pure functions of their inputs and never panic.
package diffeq
