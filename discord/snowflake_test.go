package discord

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnowflakeJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Snowflake
	}{
		{"string", `"175928847299117063"`, 175928847299117063},
		{"number", `175928847299117063`, 175928847299117063},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Snowflake
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.input, s, tt.want)
			}
		})
	}

	b, err := json.Marshal(Snowflake(175928847299117063))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"175928847299117063"` {
		t.Errorf("Marshal = %s, want quoted string", b)
	}

	b, _ = json.Marshal(NullSnowflake)
	if string(b) != "null" {
		t.Errorf("Marshal(0) = %s, want null", b)
	}
}

func TestSnowflakeInvalid(t *testing.T) {
	var s Snowflake
	if err := json.Unmarshal([]byte(`"abc"`), &s); err == nil {
		t.Error("expected error for non-numeric snowflake")
	}
	if _, err := ParseSnowflake("-1"); err == nil {
		t.Error("expected error for negative snowflake")
	}
}

func TestSnowflakeTime(t *testing.T) {
	// example snowflake from Discord's documentation
	s := MustParseSnowflake("175928847299117063")

	want := time.Date(2016, 4, 30, 11, 18, 25, 796*int(time.Millisecond), time.UTC)
	if got := s.Time(); !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}

	if got := s.Increment(); got != 7 {
		t.Errorf("Increment() = %d, want 7", got)
	}

	from := SnowflakeFromTime(want)
	if !from.Time().Equal(want) {
		t.Errorf("SnowflakeFromTime round trip = %v, want %v", from.Time(), want)
	}
	if from > s {
		t.Errorf("SnowflakeFromTime(%v) = %d, should not be greater than %d", want, from, s)
	}

	if got := SnowflakeFromTime(time.Unix(0, 0)); got != 0 {
		t.Errorf("SnowflakeFromTime before epoch = %d, want 0", got)
	}
}

func TestTypedIDs(t *testing.T) {
	var v struct {
		Channel ChannelID `json:"channel_id"`
		Guild   GuildID   `json:"guild_id,omitempty"`
	}

	if err := json.Unmarshal([]byte(`{"channel_id":"41771983423143937","guild_id":null}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.Channel != 41771983423143937 {
		t.Errorf("channel_id = %d", v.Channel)
	}
	if v.Guild.IsValid() {
		t.Errorf("guild_id should be invalid, got %d", v.Guild)
	}

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `{"channel_id":"41771983423143937"}` {
		t.Errorf("Marshal = %s", b)
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{`"2021-08-19T12:01:02.123456+00:00"`, time.Date(2021, 8, 19, 12, 1, 2, 123456000, time.UTC)},
		{`"2021-08-19T12:01:02+00:00"`, time.Date(2021, 8, 19, 12, 1, 2, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}

	for _, tt := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.input, err)
			continue
		}
		if !ts.Time().Equal(tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, ts.Time(), tt.want)
		}
	}

	b, _ := json.Marshal(Timestamp{})
	if string(b) != "null" {
		t.Errorf("Marshal(zero) = %s, want null", b)
	}

	b, _ = json.Marshal(NewTimestamp(time.Date(2021, 8, 19, 12, 1, 2, 0, time.UTC)))
	if string(b) != `"2021-08-19T12:01:02.000000+00:00"` {
		t.Errorf("Marshal = %s", b)
	}
}

func TestPermissions(t *testing.T) {
	var p Permissions
	if err := json.Unmarshal([]byte(`"2048"`), &p); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if !p.Has(PermissionSendMessages) {
		t.Errorf("expected %d to have SendMessages", p)
	}
	if p.Has(PermissionManageMessages) {
		t.Errorf("expected %d to not have ManageMessages", p)
	}

	if err := json.Unmarshal([]byte(`8`), &p); err != nil {
		t.Fatalf("Unmarshal number: %v", err)
	}
	if !p.Has(PermissionManageMessages | PermissionBanMembers) {
		t.Error("administrator should imply every permission")
	}

	p = Permissions(0).Add(PermissionViewChannel).Add(PermissionSendMessages)
	b, _ := json.Marshal(p)
	if string(b) != `"3072"` {
		t.Errorf("Marshal = %s, want \"3072\"", b)
	}
}
