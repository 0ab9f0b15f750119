package mcpserver

// PostFormatContract describes the canonical Markdown document format that
// LLM consumers should follow when drafting content for the site.
const PostFormatContract = `# Ansuz Document Format Contract

Every Markdown document in the content tree MUST follow this structure.

## Structure

` + "```" + `markdown
---
layout: post                        # REQUIRED for pages ("page"); posts may omit it
title: Human-readable title         # REQUIRED for posts
date: 2024-04-05 10:00:00 +0300     # REQUIRED for posts – ISO-8601 with UTC offset
tags:                               # OPTIONAL – YAML list; drives the tag listings
  - meta
  - minimalism
---

Body text in standard Markdown (GFM).

Footnote references use [^1] inline and are defined at the end:

[^1]: Footnote text, local to this document.
` + "```" + `

## Rules

1. **YAML front matter comes first.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **Posts need ` + "`" + `title` + "`" + ` and ` + "`" + `date` + "`" + `.** A post missing either is excluded
   from every listing and reported as a build problem.
3. **Layouts** are ` + "`" + `post` + "`" + ` or ` + "`" + `page` + "`" + `. Pages (e.g. an About page) never
   appear in chronological or tag listings.
4. **Tags** are lowercase, short, and order-insensitive. An empty tag list
   is valid and simply keeps the post out of every tag listing.
5. **File names** end with ` + "`" + `.md` + "`" + `. A ` + "`" + `YYYY-MM-DD-` + "`" + ` prefix is stripped when
   deriving the slug; two files must never derive the same slug.
6. **Footnote markers** are unique within a single document and are never
   shared across documents.
7. **Encoding** is UTF-8 with a trailing newline.
`
