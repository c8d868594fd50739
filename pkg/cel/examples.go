package cel

// FilterExpressionExamples are predicates worth copying into a config file.
var FilterExpressionExamples = map[string]string{
	"gps_only_ephemeris": `msg_type != 139 && msg_type != 137`,
	"single_rover":       `side == "base" || sender == 1234`,
	"skip_base_position": `!(side == "base" && (msg_type == 68 || msg_type == 72))`,
	"dense_observations": `!has(fields.header) || fields.header.n_obs >= 8.0`,
}
