package ansisql

import (
	"fmt"
	"strings"

	"github.com/dashport-dev/dashport/pkg/target"
)

// functions maps upper-case calculation function names to their SQL
// renderings.
var functions = map[string]target.FuncSpec{
	// Aggregates.
	"SUM":    aggregate("SUM", "SUM"),
	"AVG":    aggregate("AVG", "AVG"),
	"COUNT":  aggregate("COUNT", "COUNT"),
	"STDEV":  aggregate("STDEV", "STDDEV_SAMP"),
	"VAR":    aggregate("VAR", "VAR_SAMP"),
	"MEDIAN": aggregate("MEDIAN", "MEDIAN"),
	"COUNTD": {
		Name: "COUNTD", Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 1, AggName: "COUNT",
		Emit: func(args []string) string {
			return fmt.Sprintf("COUNT(DISTINCT %s)", args[0])
		},
	},
	"MIN": {
		Name: "MIN", Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 2, AggName: "MIN",
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("LEAST(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("MIN(%s)", args[0])
		},
	},
	"MAX": {
		Name: "MAX", Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 2, AggName: "MAX",
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("GREATEST(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("MAX(%s)", args[0])
		},
	},

	// Math.
	"ABS":     scalar("ABS", 1, "ABS(%s)"),
	"SQRT":    scalar("SQRT", 1, "SQRT(%s)"),
	"EXP":     scalar("EXP", 1, "EXP(%s)"),
	"LN":      scalar("LN", 1, "LN(%s)"),
	"LOG":     scalar("LOG", 1, "LOG10(%s)"),
	"CEILING": scalar("CEILING", 1, "CEIL(%s)"),
	"FLOOR":   scalar("FLOOR", 1, "FLOOR(%s)"),
	"SIGN":    scalar("SIGN", 1, "SIGN(%s)"),
	"POWER":   scalar("POWER", 2, "POWER(%s, %s)"),
	"ROUND": {
		Name: "ROUND", Kind: target.FuncScalar, MinArgs: 1, MaxArgs: 2,
		Emit: func(args []string) string {
			if len(args) == 2 {
				return fmt.Sprintf("ROUND(%s, %s)", args[0], args[1])
			}
			return fmt.Sprintf("ROUND(%s)", args[0])
		},
	},

	// Strings.
	"LEN":        scalar("LEN", 1, "CHAR_LENGTH(%s)"),
	"LOWER":      scalar("LOWER", 1, "LOWER(%s)"),
	"UPPER":      scalar("UPPER", 1, "UPPER(%s)"),
	"TRIM":       scalar("TRIM", 1, "TRIM(%s)"),
	"LTRIM":      scalar("LTRIM", 1, "LTRIM(%s)"),
	"RTRIM":      scalar("RTRIM", 1, "RTRIM(%s)"),
	"CONTAINS":   scalar("CONTAINS", 2, "(POSITION(%[2]s IN %[1]s) > 0)"),
	"STARTSWITH": scalar("STARTSWITH", 2, "(POSITION(%[2]s IN %[1]s) = 1)"),
	"ENDSWITH":   scalar("ENDSWITH", 2, "(RIGHT(%[1]s, CHAR_LENGTH(%[2]s)) = %[2]s)"),
	"REPLACE":    scalar("REPLACE", 3, "REPLACE(%s, %s, %s)"),
	"LEFT":       scalar("LEFT", 2, "LEFT(%s, %s)"),
	"RIGHT":      scalar("RIGHT", 2, "RIGHT(%s, %s)"),
	"SPLIT":      scalar("SPLIT", 3, "SPLIT_PART(%s, %s, %s)"),
	"MID": {
		Name: "MID", Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 3,
		Emit: func(args []string) string {
			if len(args) == 3 {
				return fmt.Sprintf("SUBSTRING(%s FROM %s FOR %s)", args[0], args[1], args[2])
			}
			return fmt.Sprintf("SUBSTRING(%s FROM %s)", args[0], args[1])
		},
	},

	// Dates.
	"YEAR":    scalar("YEAR", 1, "EXTRACT(YEAR FROM %s)"),
	"MONTH":   scalar("MONTH", 1, "EXTRACT(MONTH FROM %s)"),
	"DAY":     scalar("DAY", 1, "EXTRACT(DAY FROM %s)"),
	"QUARTER": scalar("QUARTER", 1, "EXTRACT(QUARTER FROM %s)"),
	"WEEK":    scalar("WEEK", 1, "EXTRACT(WEEK FROM %s)"),
	"TODAY": {
		Name: "TODAY", Kind: target.FuncScalar, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "CURRENT_DATE" },
	},
	"NOW": {
		Name: "NOW", Kind: target.FuncScalar, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "CURRENT_TIMESTAMP" },
	},
	"DATEPART": {
		Name: "DATEPART", Kind: target.FuncScalar, MinArgs: 2, MaxArgs: 2,
		Emit: func(args []string) string {
			return fmt.Sprintf("EXTRACT(%s FROM %s)", unquote(args[0]), args[1])
		},
	},
	"DATEDIFF": {
		Name: "DATEDIFF", Kind: target.FuncScalar, MinArgs: 3, MaxArgs: 3,
		Emit: func(args []string) string {
			switch unquote(args[0]) {
			case "YEAR":
				return fmt.Sprintf("(EXTRACT(YEAR FROM %s) - EXTRACT(YEAR FROM %s))", args[2], args[1])
			case "MONTH":
				return fmt.Sprintf("((EXTRACT(YEAR FROM %[1]s) - EXTRACT(YEAR FROM %[2]s)) * 12 + (EXTRACT(MONTH FROM %[1]s) - EXTRACT(MONTH FROM %[2]s)))", args[2], args[1])
			default:
				return fmt.Sprintf("(CAST(%s AS DATE) - CAST(%s AS DATE))", args[2], args[1])
			}
		},
	},

	// Type conversions.
	"INT":   scalar("INT", 1, "CAST(%s AS INTEGER)"),
	"FLOAT": scalar("FLOAT", 1, "CAST(%s AS DOUBLE PRECISION)"),
	"STR":   scalar("STR", 1, "CAST(%s AS VARCHAR)"),
	"DATE":  scalar("DATE", 1, "CAST(%s AS DATE)"),

	// Logic and null handling.
	"IIF":    scalar("IIF", 3, "CASE WHEN %s THEN %s ELSE %s END"),
	"IFNULL": scalar("IFNULL", 2, "COALESCE(%s, %s)"),
	"ISNULL": scalar("ISNULL", 1, "(%s IS NULL)"),
	"ZN":     scalar("ZN", 1, "COALESCE(%s, 0)"),

	// Windows.
	"RUNNING_SUM": window("RUNNING_SUM", "SUM(%s) OVER (ROWS UNBOUNDED PRECEDING)"),
	"RUNNING_AVG": window("RUNNING_AVG", "AVG(%s) OVER (ROWS UNBOUNDED PRECEDING)"),
	"RUNNING_MAX": window("RUNNING_MAX", "MAX(%s) OVER (ROWS UNBOUNDED PRECEDING)"),
	"RUNNING_MIN": window("RUNNING_MIN", "MIN(%s) OVER (ROWS UNBOUNDED PRECEDING)"),
	"RANK":        window("RANK", "RANK() OVER (ORDER BY %s DESC)"),
	"INDEX": {
		Name: "INDEX", Kind: target.FuncWindow, MinArgs: 0, MaxArgs: 0,
		Emit: func([]string) string { return "ROW_NUMBER() OVER ()" },
	},
}

func aggregate(name, sqlName string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncAggregate, MinArgs: 1, MaxArgs: 1, AggName: sqlName,
		Emit: func(args []string) string {
			return fmt.Sprintf("%s(%s)", sqlName, args[0])
		},
	}
}

func scalar(name string, arity int, format string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncScalar, MinArgs: arity, MaxArgs: arity,
		Emit: func(args []string) string {
			anyArgs := make([]interface{}, len(args))
			for i, a := range args {
				anyArgs[i] = a
			}
			return fmt.Sprintf(format, anyArgs...)
		},
	}
}

func window(name, format string) target.FuncSpec {
	return target.FuncSpec{
		Name: name, Kind: target.FuncWindow, MinArgs: 1, MaxArgs: 1,
		Emit: func(args []string) string {
			return fmt.Sprintf(format, args[0])
		},
	}
}

// unquote strips the quotes from a rendered SQL string literal and upper
// cases it, for date part keywords.
func unquote(arg string) string {
	return strings.ToUpper(strings.Trim(arg, "'"))
}
