package kernel

type ResumeID string

func NewResumeID(id string) ResumeID { return ResumeID(id) }
func (r ResumeID) String() string    { return string(r) }
func (r ResumeID) IsEmpty() bool     { return string(r) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (r JobID) String() string { return string(r) }
func (r JobID) IsEmpty() bool  { return string(r) == "" }

type SkillID string

func NewSkillID(id string) SkillID { return SkillID(id) }
func (r SkillID) String() string   { return string(r) }
func (r SkillID) IsEmpty() bool    { return string(r) == "" }
