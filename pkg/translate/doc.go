// Package translate shapes OpenAI chat-completion requests into Gemini
// requests.
//
// The pieces compose bottom-up:
//
//   - ConvertSchema rewrites arbitrary JSON Schema into the backend's
//     restricted schema dialect.
//   - Builder.BuildGeneration derives sampling, safety and thinking settings,
//     correcting thinking budgets the target model cannot express.
//   - PlanTools and ResolveTools pick between client functions and
//     server-enabled native tools and map tool_choice to a calling mode.
//   - Builder.BuildRequest ties these together with message conversion.
//
// Client input never makes translation fail. Unrecognized schema keys,
// effort hints and tool choices are dropped, and bad budgets are corrected
// and logged.
package translate
