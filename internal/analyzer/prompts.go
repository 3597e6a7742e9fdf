package analyzer

import "fmt"

func jdDeconstructionPrompt(jobDescription string) string {
	return fmt.Sprintf(`
You are a hiring manager turning a job description into a structured screening rubric.

Rules:
1. Reply with ONE raw JSON object and nothing else.
2. Infer "seniority_level" from the wording ("Entry-level", "Mid-level", "Senior"). Internships count as "Entry-level".
3. "must_have_skills" holds only the core skills needed on day one. Keep it to 3-5 foundational items for entry-level roles.
4. "nice_to_have_skills" holds everything preferred, advanced or optional. When unsure, put a skill here.
5. "required_experience_years" is the minimum number of years mentioned, or 0 when none is stated.

Schema:
{
  "job_title": "most specific title in the text",
  "seniority_level": "string",
  "required_experience_years": 0,
  "must_have_skills": ["string"],
  "nice_to_have_skills": ["string"]
}

### JOB DESCRIPTION TEXT ###
%s
### END JOB DESCRIPTION TEXT ###
`, jobDescription)
}

func skillMatchPrompt(skillsJSON, resumeText string) string {
	return fmt.Sprintf(`
You are a recruitment analyst looking for evidence of each required skill in a resume. Give credit for skills implied by the candidate's stack:
- A framework implies the skills it is built on (Spring Boot implies REST APIs, JPA and a build tool).
- Database work implies SQL at level 2.
- Any Git hosting mention implies Git at level 2.
- A close substitute (Flask for FastAPI, Vue for React, Azure for AWS) earns level 2.

Proficiency levels:
3 = primary stack or several substantial projects
2 = used in at least one project, or strongly implied
1 = mentioned, or an adjacent technology is present
0 = no evidence at all

Be generous with entry-level candidates. Quote the resume in "evidence_from_resume".
Finish with a 2-3 sentence "executive_summary" focused on strengths.

Reply with ONE raw JSON object:
{
  "skill_match_analysis": {
    "must_have_matches": [{"skill": "string", "proficiency_level": 0, "evidence_from_resume": "string"}],
    "nice_to_have_matches": [{"skill": "string", "proficiency_level": 0, "evidence_from_resume": "string"}]
  },
  "executive_summary": "string"
}

### REQUIRED SKILLS ###
%s
### END REQUIRED SKILLS ###

### RESUME TEXT ###
%s
### END RESUME TEXT ###
`, skillsJSON, resumeText)
}

func holisticParsePrompt(resumeText string) string {
	return fmt.Sprintf(`
You extract structured data from resumes. Merge work experience and projects into one "experience_and_projects" list.
Use an empty list for any section that is missing. Reply with ONE raw JSON object:
{
  "full_name": "string",
  "contact_info": "primary email, else phone number, else Not Found",
  "experience_and_projects": [{"title": "string", "duration": "string"}],
  "certifications_and_awards": ["string"],
  "leadership_and_extracurriculars": ["string"]
}

### RESUME FOR PROFILE EXTRACTION ###
%s
### END RESUME ###
`, resumeText)
}

func experiencePrompt(experienceJSON, today string) string {
	return fmt.Sprintf(`
You add up professional experience. Read each duration below and compute the total years as one decimal number.
Treat "Present", "Current" or an open end date as %s. Do not double count overlapping periods.
Reply with ONE raw JSON object: {"total_experience_years": 0.0}

### EXPERIENCE LIST ###
%s
### END EXPERIENCE LIST ###
`, today, experienceJSON)
}

func qualityPrompt(resumeText string) string {
	return fmt.Sprintf(`
You review the written CONTENT of a resume (formatting is not visible). Judge clarity, quantified impact,
technical depth, professional language and completeness.

"quality_score" bands:
0.90-1.00 excellent, quantified achievements and depth
0.85-0.89 good, some metrics
0.80-0.84 average, baseline descriptions
0.75-0.79 below average, vague
0.70-0.74 poor, very little information
Only go below 0.70 for content that is truly unusable.

List only serious "red_flags": no work history, no technical skills, gaps over 3 years, contradictions,
unprofessional tone. Ignore typos and layout.

Reply with ONE raw JSON object: {"quality_score": 0.0, "red_flags": ["string"]}

### RESUME FOR QUALITY REVIEW ###
%s
### END RESUME ###
`, resumeText)
}
