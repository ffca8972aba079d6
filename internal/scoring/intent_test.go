package scoring

import (
	"reflect"
	"testing"
)

func TestParseIntent(t *testing.T) {
	cases := []struct {
		name     string
		intent   string
		expected intentSignals
	}{
		{
			name:   "full intent",
			intent: "Find SWE contacts at Amazon in Seattle",
			expected: intentSignals{
				Role:     "swe",
				Company:  "amazon",
				Location: "seattle",
				Keywords: []string{"amazon", "seattle"},
			},
		},
		{
			name:   "no location",
			intent: "Find Software Engineers at Google",
			expected: intentSignals{
				Role:     "engineer",
				Company:  "google",
				Keywords: []string{"software", "engineers", "google"},
			},
		},
		{
			name:   "location only",
			intent: "designers in New York",
			expected: intentSignals{
				Role:     "designer",
				Location: "new york",
				Keywords: []string{"designers", "york"},
			},
		},
		{
			name:   "company followed by location",
			intent: "Find PMs at Stripe in San Francisco",
			expected: intentSignals{
				Role:     "pm",
				Company:  "stripe",
				Location: "san francisco",
				Keywords: []string{"stripe", "francisco"},
			},
		},
		{
			name:     "empty intent",
			intent:   "",
			expected: intentSignals{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseIntent(tc.intent)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestParseIntentKeywordCap(t *testing.T) {
	got := parseIntent("alpha bravo charlie delta echoes foxtrot golfing hotels india juliet")
	if len(got.Keywords) != maxIntentKeywords {
		t.Fatalf("expected %d keywords, got %d", maxIntentKeywords, len(got.Keywords))
	}
}
