package shader

// ShaderBuilderOption is a functional option for configuring a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithPreProcessor sets the pre-processor used to expand @oxy: annotations.
// Use it to bind @oxy:const values. Without it a pre-processor with no constants is used.
//
// Parameters:
//   - pp: the pre-processor
//
// Returns:
//   - ShaderBuilderOption: option function that sets the pre-processor
func WithPreProcessor(pp PreProcessor) ShaderBuilderOption {
	return func(s *shader) {
		s.pp = pp
	}
}
